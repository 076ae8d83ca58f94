package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	APIKey string `yaml:"api_key"`
}

// AzureConfig holds the Document Intelligence layout service credentials.
type AzureConfig struct {
	Endpoint         string `yaml:"endpoint"`
	Key              string `yaml:"key"`
	PollIntervalSecs int    `yaml:"poll_interval_secs"`
}

type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Key            string `yaml:"key"`
	EmbeddingModel string `yaml:"embedding_model"`
	InferenceModel string `yaml:"inference_model"`
}

type RAGConfig struct {
	ChunkSize       int `yaml:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap"`
	TopK            int `yaml:"top_k"`
	MaxAnswerTokens int `yaml:"max_answer_tokens"`
}

type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Azure  AzureConfig  `yaml:"azure"`
	LLM    LLMConfig    `yaml:"llm"`
	RAG    RAGConfig    `yaml:"rag"`
	Fetch  FetchConfig  `yaml:"fetch"`
	// Extractor selects the layout extractor implementation: "azure" (default)
	// or "local" for offline PDF extraction.
	Extractor string `yaml:"extractor"`
}

// Load reads the config file at path. A missing file yields defaults; secrets
// can always be supplied through the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Azure.PollIntervalSecs == 0 {
		cfg.Azure.PollIntervalSecs = 2
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.LLM.InferenceModel == "" {
		cfg.LLM.InferenceModel = "gpt-4o-mini"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.MaxAnswerTokens == 0 {
		cfg.RAG.MaxAnswerTokens = 512
	}
	if cfg.Fetch.TimeoutSecs == 0 {
		cfg.Fetch.TimeoutSecs = 60
	}
	if cfg.Extractor == "" {
		cfg.Extractor = "azure"
	}
}

// applyEnv lets environment variables override file-based secrets.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HACKRX_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("AZURE_DI_ENDPOINT"); v != "" {
		cfg.Azure.Endpoint = v
	}
	if v := os.Getenv("AZURE_DI_KEY"); v != "" {
		cfg.Azure.Key = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}
