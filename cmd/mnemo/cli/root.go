package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	jsonLogs     bool
	providerType string
	modelName    string
	embedModel   string
	indexType    string
	indexURL     string
	collection   string
	profilePath  string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Chat client with similarity-indexed conversation memory",
	Long: `Mnemo keeps your whole conversation in a similarity index and rebuilds
the relevant context for every turn with a two-stage, query-expanding search.`,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Args:  cobra.NoArgs,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past chat sessions",
	Run: func(cmd *cobra.Command, args []string) {
		s := getStore()
		defer s.Close()

		sessions, err := s.ListSessions()
		if err != nil {
			fmt.Printf("Failed to list sessions: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return
		}
		for _, sess := range sessions {
			fmt.Printf("%s  %s  %s/%s  %s\n", sess.ID, sess.CreatedAt.Format("2006-01-02 15:04"), sess.Provider, sess.Model, sess.Collection)
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	chatCmd.Run = func(cmd *cobra.Command, args []string) {
		runChat()
	}
	RootCmd.AddCommand(chatCmd)
	RootCmd.AddCommand(sessionsCmd)
	chatCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	chatCmd.Flags().BoolVar(&jsonLogs, "json", false, "Emit logs as JSON")
	chatCmd.Flags().StringVarP(&providerType, "provider", "p", "ollama", "AI Provider (ollama, openai, gemini, anthropic)")
	chatCmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
	chatCmd.Flags().StringVar(&embedModel, "embed-model", "", "Embedding model identifier passed to the index")
	chatCmd.Flags().StringVar(&indexType, "index", "local", "Similarity index backend (local, remote, ephemeral)")
	chatCmd.Flags().StringVar(&indexURL, "index-url", "", "Base URL of the remote index service")
	chatCmd.Flags().StringVar(&collection, "collection", "", "Collection name (default: a fresh one per session)")
	chatCmd.Flags().StringVar(&profilePath, "profile", "", "Path to a persona profile file (.yaml or .json)")
}
