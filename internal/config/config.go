package config

import "fmt"

type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
	Triage  TriageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port      int
	AuthToken string
}

type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	FastModel  string
	EmbedModel string
}

type StorageConfig struct {
	// Driver selects the store implementation: "sqlite" or "memory".
	Driver  string
	DataDir string
}

type TriageConfig struct {
	// Tunables for the knowledge-routing pipeline. The defaults mirror the
	// reference deployment; they are not load-bearing correctness bounds.
	SimilarityThreshold float64
	MinConfidence       int
	SearchLimit         int
	AssessAfterTurns    int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4000,
		},
		OpenAI: OpenAIConfig{
			ChatModel:  "gpt-4o",
			FastModel:  "gpt-4o-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Storage: StorageConfig{
			Driver:  "sqlite",
			DataDir: defaultDataDir(),
		},
		Triage: TriageConfig{
			SimilarityThreshold: 0.55,
			MinConfidence:       70,
			SearchLimit:         5,
			AssessAfterTurns:    6,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/counselgate/config.json, then applies COUNSELGATE_*
// environment overrides. The OpenAI API key is required and comes from the
// environment only; it is never written to the config file.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable COUNSELGATE_OPENAI_API_KEY")
	}

	if cfg.Storage.Driver != "sqlite" && cfg.Storage.Driver != "memory" {
		return Config{}, fmt.Errorf("unknown storage driver %q (want sqlite or memory)", cfg.Storage.Driver)
	}

	return cfg, nil
}
