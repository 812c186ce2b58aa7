package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key    string
	typ    keyType
	env    string
	secret bool
	apply  func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "COUNSELGATE_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "server.auth_token", typ: kString, env: "COUNSELGATE_AUTH_TOKEN",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.Server.AuthToken = v.(string) },
	},
	{
		key: "openai.api_key", typ: kString, env: "COUNSELGATE_OPENAI_API_KEY",
		secret: true,
		apply:  func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
	},
	{
		key: "openai.base_url", typ: kString, env: "COUNSELGATE_OPENAI_BASE_URL",
		apply: func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
	},
	{
		key: "openai.chat_model", typ: kString, env: "COUNSELGATE_OPENAI_CHAT_MODEL",
		apply: func(cfg *Config, v any) { cfg.OpenAI.ChatModel = v.(string) },
	},
	{
		key: "openai.fast_model", typ: kString, env: "COUNSELGATE_OPENAI_FAST_MODEL",
		apply: func(cfg *Config, v any) { cfg.OpenAI.FastModel = v.(string) },
	},
	{
		key: "openai.embed_model", typ: kString, env: "COUNSELGATE_OPENAI_EMBED_MODEL",
		apply: func(cfg *Config, v any) { cfg.OpenAI.EmbedModel = v.(string) },
	},
	{
		key: "storage.driver", typ: kString, env: "COUNSELGATE_STORAGE_DRIVER",
		apply: func(cfg *Config, v any) { cfg.Storage.Driver = v.(string) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "COUNSELGATE_STORAGE_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "triage.similarity_threshold", typ: kFloat, env: "COUNSELGATE_TRIAGE_SIMILARITY_THRESHOLD",
		apply: func(cfg *Config, v any) { cfg.Triage.SimilarityThreshold = v.(float64) },
	},
	{
		key: "triage.min_confidence", typ: kInt, env: "COUNSELGATE_TRIAGE_MIN_CONFIDENCE",
		apply: func(cfg *Config, v any) { cfg.Triage.MinConfidence = v.(int) },
	},
	{
		key: "triage.search_limit", typ: kInt, env: "COUNSELGATE_TRIAGE_SEARCH_LIMIT",
		apply: func(cfg *Config, v any) { cfg.Triage.SearchLimit = v.(int) },
	},
	{
		key: "triage.assess_after_turns", typ: kInt, env: "COUNSELGATE_TRIAGE_ASSESS_AFTER_TURNS",
		apply: func(cfg *Config, v any) { cfg.Triage.AssessAfterTurns = v.(int) },
	},
	{
		key: "log.level", typ: kString, env: "COUNSELGATE_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
