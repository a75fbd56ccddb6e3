package cli

import (
	"testing"

	"github.com/felixgeelhaar/mnemo/internal/profile"
)

func TestCLI_Root(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range RootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"chat", "sessions", "config"} {
		if !names[want] {
			t.Errorf("%s command not registered", want)
		}
	}
}

func TestCLI_ChatFlags(t *testing.T) {
	flags := chatCmd.Flags()
	for _, want := range []string{"provider", "model", "embed-model", "index", "index-url", "collection", "profile", "verbose", "json"} {
		if flags.Lookup(want) == nil {
			t.Errorf("chat command is missing the --%s flag", want)
		}
	}
	if f := flags.Lookup("index"); f != nil && f.DefValue != "local" {
		t.Errorf("Expected local index by default, got %q", f.DefValue)
	}
}

func TestCLI_Config(t *testing.T) {
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() != "config" {
			continue
		}
		sub := map[string]bool{}
		for _, c := range cmd.Commands() {
			sub[c.Name()] = true
		}
		if !sub["set"] || !sub["get"] {
			t.Errorf("Expected set and get subcommands for config, got %v", sub)
		}
		return
	}
	t.Error("config command not found")
}

func TestApplyProfile(t *testing.T) {
	origProvider, origModel, origEmbed := providerType, modelName, embedModel
	defer func() { providerType, modelName, embedModel = origProvider, origModel, origEmbed }()

	applyProfile(&profile.Profile{Provider: "openai", Model: "gpt-4o-mini", EmbedModel: "text-embedding-3-small"})

	if providerType != "openai" || modelName != "gpt-4o-mini" || embedModel != "text-embedding-3-small" {
		t.Errorf("Profile values not applied: %s %s %s", providerType, modelName, embedModel)
	}
}

func TestBuildIndex_Unknown(t *testing.T) {
	origIndex := indexType
	defer func() { indexType = origIndex }()

	indexType = "clustered"
	if _, err := buildIndex(nil, nil, nil); err == nil {
		t.Error("Expected error for unknown index backend")
	}
}

func TestBuildProvider_Unknown(t *testing.T) {
	origProvider := providerType
	defer func() { providerType = origProvider }()

	providerType = "skynet"
	if _, err := buildProvider(nil, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
