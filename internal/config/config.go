package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8000"`

	// La API key no se valida: el cliente se construye igual y falla en la primera llamada.
	LLMAPIKey       string  `env:"OPENROUTER_API_SECRET_KEY"`
	LLMBaseURL      string  `env:"LLM_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	ChatModel       string  `env:"CHAT_MODEL" envDefault:"openai/gpt-3.5-turbo"`
	ChatTemperature float64 `env:"CHAT_TEMPERATURE" envDefault:"0.6"`
	ImageModel      string  `env:"IMAGE_MODEL" envDefault:"openai/dall-e-3"`
	ImageSize       string  `env:"IMAGE_SIZE" envDefault:"1024x1024"`
	AppReferer      string  `env:"APP_REFERER" envDefault:"http://127.0.0.1:8000/"`
	AppTitle        string  `env:"APP_TITLE" envDefault:"Python Tutor AI"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LogFile   string `env:"LOG_FILE"`
	TraceFile string `env:"TRACE_FILE"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
