package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/mnemo/internal/credential"
	"github.com/felixgeelhaar/mnemo/internal/store"
)

func getStore() store.Storage {
	home, _ := os.UserHomeDir()
	mnemoDir := filepath.Join(home, ".mnemo")
	storeLayer, err := store.NewSQLiteStore(filepath.Join(mnemoDir, "mnemo.db"))
	if err != nil {
		fmt.Printf("Failed to init store: %v\n", err)
		os.Exit(1)
	}
	return storeLayer
}

// secretConfig reads a config value, decrypting it when it is stored encrypted.
func secretConfig(s store.Storage, creds *credential.Manager, key string) string {
	stored, _ := s.GetConfig(key)
	if stored == "" {
		return ""
	}
	value, err := creds.Decrypt(stored)
	if err != nil {
		return ""
	}
	return value
}
