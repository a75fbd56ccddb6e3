package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile bundles the tunables of a chat session so a persona can be kept in a
// file and reused across sessions.
type Profile struct {
	Persona      string  `json:"persona" yaml:"persona"`
	Provider     string  `json:"provider" yaml:"provider"`
	Model        string  `json:"model" yaml:"model"`
	EmbedModel   string  `json:"embed_model" yaml:"embed_model"`
	Temperature  float32 `json:"temperature" yaml:"temperature"`
	MaxTokens    int     `json:"max_tokens" yaml:"max_tokens"`
	ContextLimit int     `json:"context_limit" yaml:"context_limit"`
}

// ValidationResult represents the outcome of a linting pass.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// Load reads a profile from a file (JSON or YAML).
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON profile: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format: %s (use .json or .yaml)", ext)
	}

	return &p, nil
}

// Validate checks the Profile for out-of-range settings.
func Validate(p Profile) ValidationResult {
	res := ValidationResult{
		Valid:    true,
		Warnings: []string{},
		Errors:   []string{},
	}

	if p.Temperature < 0 || p.Temperature > 2 {
		res.Valid = false
		res.Errors = append(res.Errors, "temperature must be between 0 and 2")
	}

	if p.MaxTokens < 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "max_tokens cannot be negative")
	}

	if p.ContextLimit < 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "context_limit cannot be negative")
	}

	if p.Persona == "" {
		res.Warnings = append(res.Warnings, "no persona set; replies will have no standing instructions")
	}

	if p.ContextLimit > 200 {
		res.Warnings = append(res.Warnings, "context_limit above 200 retrieves more history than most prompts can hold")
	}

	return res
}
