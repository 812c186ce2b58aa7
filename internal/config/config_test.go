package config

import (
	"testing"
)

type mapBackend map[string]any

func (m mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	i, _ := v.(int)
	return i, true, nil
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COUNSELGATE_OPENAI_API_KEY", "test-key")

	cfg, err := loadWith(mapBackend{})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Triage.SimilarityThreshold != 0.55 {
		t.Errorf("similarity threshold = %v, want 0.55", cfg.Triage.SimilarityThreshold)
	}
	if cfg.Triage.MinConfidence != 70 {
		t.Errorf("min confidence = %d, want 70", cfg.Triage.MinConfidence)
	}
	if cfg.Triage.AssessAfterTurns != 6 {
		t.Errorf("assess after turns = %d, want 6", cfg.Triage.AssessAfterTurns)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o" || cfg.OpenAI.EmbedModel != "text-embedding-3-small" {
		t.Errorf("models = %q / %q", cfg.OpenAI.ChatModel, cfg.OpenAI.EmbedModel)
	}
}

func TestLoadBackendValues(t *testing.T) {
	t.Setenv("COUNSELGATE_OPENAI_API_KEY", "test-key")

	cfg, err := loadWith(mapBackend{
		"server.port":                 5000,
		"storage.driver":              "memory",
		"triage.similarity_threshold": "0.7",
	})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Triage.SimilarityThreshold != 0.7 {
		t.Errorf("threshold = %v, want 0.7", cfg.Triage.SimilarityThreshold)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	t.Setenv("COUNSELGATE_OPENAI_API_KEY", "test-key")
	t.Setenv("COUNSELGATE_SERVER_PORT", "8080")
	t.Setenv("COUNSELGATE_TRIAGE_MIN_CONFIDENCE", "80")

	cfg, err := loadWith(mapBackend{"server.port": 5000})
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, env should win over backend", cfg.Server.Port)
	}
	if cfg.Triage.MinConfidence != 80 {
		t.Errorf("min confidence = %d, want 80", cfg.Triage.MinConfidence)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("COUNSELGATE_OPENAI_API_KEY", "")

	if _, err := loadWith(mapBackend{}); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("COUNSELGATE_OPENAI_API_KEY", "test-key")
	t.Setenv("COUNSELGATE_STORAGE_DRIVER", "postgres")

	if _, err := loadWith(mapBackend{}); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
