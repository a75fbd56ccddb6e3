package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/mnemo/internal/chat"
	"github.com/felixgeelhaar/mnemo/internal/credential"
	"github.com/felixgeelhaar/mnemo/internal/memory"
	"github.com/felixgeelhaar/mnemo/internal/observe"
	"github.com/felixgeelhaar/mnemo/internal/profile"
	"github.com/felixgeelhaar/mnemo/internal/provider"
	"github.com/felixgeelhaar/mnemo/internal/store"
	"github.com/felixgeelhaar/mnemo/internal/vectorindex"
	"github.com/google/uuid"
)

func runChat() {
	// Initialize Observer
	var obs *observe.Observer
	if jsonLogs {
		obs = observe.NewJSON(os.Stderr, verbose)
	} else {
		obs = observe.New(os.Stderr, verbose)
	}
	defer obs.Close()

	// Initialize Store
	storeLayer := getStore()
	defer storeLayer.Close()

	creds, err := credential.NewManager()
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init credential manager")
	}

	opts := chat.Options{}
	if profilePath != "" {
		prof, err := profile.Load(profilePath)
		if err != nil {
			obs.Log().Fatal().Err(err).Msg("Failed to load profile")
		}
		validation := profile.Validate(*prof)
		for _, w := range validation.Warnings {
			obs.Log().Warn().Str("profile", profilePath).Msg(w)
		}
		if !validation.Valid {
			obs.Log().Fatal().Str("errors", strings.Join(validation.Errors, ", ")).Msg("Invalid profile")
		}
		applyProfile(prof)
		opts = chat.Options{
			Persona:      prof.Persona,
			Temperature:  prof.Temperature,
			MaxTokens:    prof.MaxTokens,
			ContextLimit: prof.ContextLimit,
		}
	}

	// Initialize Provider
	p, err := buildProvider(storeLayer, creds)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to initialize provider")
	}

	// Initialize the similarity index
	idx, err := buildIndex(storeLayer, creds, p)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to initialize index")
	}

	ctx := context.Background()

	collectionName := collection
	if collectionName == "" {
		collectionName = "chat-" + uuid.NewString()[:8]
	}
	if err := idx.EnsureCollection(ctx, collectionName, embedModel); err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to ensure collection")
	}

	sess := &store.Session{
		ID:         uuid.NewString(),
		Collection: collectionName,
		Provider:   p.Name(),
		Model:      modelName,
		CreatedAt:  time.Now(),
	}
	if err := storeLayer.CreateSession(sess); err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to create session")
	}

	recorder := memory.NewRecorder(p, memory.Target{
		Index:      idx,
		Collection: collectionName,
		EmbedModel: embedModel,
	}, obs)
	session := chat.NewSession(p, recorder, obs, opts)

	fmt.Printf("Session collection: %s\n", collectionName)
	fmt.Println("Type 'exit' or 'quit' to end the session.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := session.Turn(ctx, line)
		if err != nil {
			obs.Log().Error().Err(err).Msg("Turn failed")
			fmt.Println("Sorry, that turn could not be recorded. Please try again.")
			continue
		}
		fmt.Printf("mnemo> %s\n", reply)
	}
	fmt.Println("Goodbye!")
}

// applyProfile fills flags the user did not set explicitly.
func applyProfile(prof *profile.Profile) {
	if prof.Provider != "" && !chatCmd.Flags().Changed("provider") {
		providerType = prof.Provider
	}
	if prof.Model != "" && !chatCmd.Flags().Changed("model") {
		modelName = prof.Model
	}
	if prof.EmbedModel != "" && !chatCmd.Flags().Changed("embed-model") {
		embedModel = prof.EmbedModel
	}
}

func buildProvider(s store.Storage, creds *credential.Manager) (provider.Provider, error) {
	switch providerType {
	case "openai":
		apiKey := secretConfig(s, creds, "openai.api_key")
		baseURL, _ := s.GetConfig("openai.base_url")
		return provider.NewOpenAIProvider(apiKey, baseURL, modelName)
	case "ollama":
		return provider.NewOllamaProvider(modelName)
	case "gemini":
		apiKey := secretConfig(s, creds, "gemini.api_key")
		return provider.NewGeminiProvider(apiKey, modelName)
	case "anthropic":
		apiKey := secretConfig(s, creds, "anthropic.api_key")
		return provider.NewAnthropicProvider(apiKey, modelName)
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerType)
	}
}

func buildIndex(s store.Storage, creds *credential.Manager, embedder vectorindex.Embedder) (vectorindex.Index, error) {
	switch indexType {
	case "local":
		return vectorindex.NewLocal(s.DB(), embedder)
	case "remote":
		baseURL := indexURL
		if baseURL == "" {
			baseURL, _ = s.GetConfig("index.url")
		}
		apiKey := secretConfig(s, creds, "index.api_key")
		return vectorindex.NewRemote(baseURL, apiKey)
	case "ephemeral":
		return vectorindex.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown index backend: %s", indexType)
	}
}
