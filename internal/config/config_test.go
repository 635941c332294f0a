package config

import "testing"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_SECRET_KEY", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.HTTPPort)
	}
	if cfg.ChatModel != "openai/gpt-3.5-turbo" || cfg.ImageModel != "openai/dall-e-3" {
		t.Fatalf("unexpected default models: chat=%q image=%q", cfg.ChatModel, cfg.ImageModel)
	}
	if cfg.ChatTemperature != 0.6 {
		t.Fatalf("expected temperature 0.6, got %v", cfg.ChatTemperature)
	}
	if cfg.ImageSize != "1024x1024" {
		t.Fatalf("expected size 1024x1024, got %q", cfg.ImageSize)
	}
	if cfg.LLMBaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected base url %q", cfg.LLMBaseURL)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.RedisAddr)
	}
}

func TestLoadConfig_MissingAPIKeyIsAccepted(t *testing.T) {
	t.Setenv("OPENROUTER_API_SECRET_KEY", "")
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("missing api key should not fail config, got %v", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPENROUTER_API_SECRET_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CHAT_TEMPERATURE", "0.2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "9090" || cfg.LLMAPIKey != "sk-test" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Fatalf("redis overrides not applied: addr=%q db=%d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.ChatTemperature != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", cfg.ChatTemperature)
	}
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for invalid redis db")
	}
}
