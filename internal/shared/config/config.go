package config

import (
	"log"
	"os"
)

type Config struct {
	DatabaseURL   string
	OpenAIKey     string
	GroqKey       string
	DeepSeekKey   string
	LLMProvider   string
	LLMModel      string
	Port          string
	Env           string
	ReferenceDate string
}

func LoadConfig() *Config {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		GroqKey:       os.Getenv("GROQ_API_KEY"),
		DeepSeekKey:   os.Getenv("DEEPSEEK_API_KEY"),
		LLMProvider:   os.Getenv("LLM_PROVIDER"),
		LLMModel:      os.Getenv("LLM_MODEL"),
		Port:          os.Getenv("PORT"),
		Env:           os.Getenv("ENV"),
		ReferenceDate: os.Getenv("REFERENCE_DATE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "openai"
	}
	if cfg.ReferenceDate == "" {
		// The transactions dataset is a fixed snapshot; relative time windows
		// ("last 3 months") are anchored to its final day, not to time.Now().
		cfg.ReferenceDate = "2024-12-06"
	}

	if cfg.DatabaseURL == "" {
		log.Println("⚠️ DATABASE_URL is empty, database features will not work")
	}

	return cfg
}
