package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the duplicate-detection service
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Similarity SimilarityConfig `yaml:"similarity"`
	LLM        LLMConfig        `yaml:"llm"`
	Scan       ScanConfig       `yaml:"scan"`
	LogLevel   string           `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig holds bug storage configuration
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// SimilarityConfig holds scoring weights and duplicate-detection defaults
type SimilarityConfig struct {
	JaccardWeight    float64 `yaml:"jaccard_weight"`
	CosineWeight     float64 `yaml:"cosine_weight"`
	SequenceWeight   float64 `yaml:"sequence_weight"`
	Threshold        float64 `yaml:"threshold"`
	MaxResults       int     `yaml:"max_results"`
	ClusterThreshold float64 `yaml:"cluster_threshold"`
	KeywordCount     int     `yaml:"keyword_count"`
	DictPath         string  `yaml:"dict_path"`
	DisableDict      bool    `yaml:"disable_dict"`
}

// LLMConfig selects the language model used for analysis and test case
// generation. Provider "none" disables it.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ScanConfig holds background scan configuration
type ScanConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: GetStringEnv("SERVER_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			DataDir: GetStringEnv("DATA_DIR", "./data"),
		},
		Similarity: SimilarityConfig{
			JaccardWeight:    GetFloatEnv("SIMILARITY_JACCARD_WEIGHT", 0.3),
			CosineWeight:     GetFloatEnv("SIMILARITY_COSINE_WEIGHT", 0.4),
			SequenceWeight:   GetFloatEnv("SIMILARITY_SEQUENCE_WEIGHT", 0.3),
			Threshold:        GetFloatEnv("SIMILARITY_THRESHOLD", 0.7),
			MaxResults:       GetIntEnv("SIMILARITY_MAX_RESULTS", 10),
			ClusterThreshold: GetFloatEnv("SIMILARITY_CLUSTER_THRESHOLD", 0.8),
			KeywordCount:     GetIntEnv("SIMILARITY_KEYWORD_COUNT", 10),
			DictPath:         GetStringEnv("SIMILARITY_DICT_PATH", ""),
			DisableDict:      GetBoolEnv("SIMILARITY_DISABLE_DICT", false),
		},
		LLM: LLMConfig{
			Provider:    GetStringEnv("LLM_PROVIDER", "none"),
			BaseURL:     GetStringEnv("LLM_BASE_URL", ""),
			Model:       GetStringEnv("LLM_MODEL", "qwen3:1.7b"),
			APIKey:      GetStringEnv("LLM_API_KEY", ""),
			Temperature: GetFloatEnv("LLM_TEMPERATURE", 0.7),
			Timeout:     GetDurationEnv("LLM_TIMEOUT", 30*time.Second),
		},
		Scan: ScanConfig{
			Concurrency: GetIntEnv("SCAN_CONCURRENCY", 4),
		},
		LogLevel: GetStringEnv("LOG_LEVEL", "info"),
	}
}

// LoadFile loads the environment configuration and overlays the YAML file at
// path. Keys missing from the file keep their environment or default value.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	s := c.Similarity
	if s.JaccardWeight < 0 || s.CosineWeight < 0 || s.SequenceWeight < 0 {
		return errors.New("similarity weights must not be negative")
	}
	if s.JaccardWeight+s.CosineWeight+s.SequenceWeight <= 0 {
		return errors.New("similarity weights must not all be zero")
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("similarity threshold %v is outside [0,1]", s.Threshold)
	}
	if s.ClusterThreshold < 0 || s.ClusterThreshold > 1 {
		return fmt.Errorf("cluster threshold %v is outside [0,1]", s.ClusterThreshold)
	}
	if s.MaxResults <= 0 {
		return errors.New("max results must be positive")
	}
	if c.Scan.Concurrency <= 0 {
		return errors.New("scan concurrency must be positive")
	}
	if c.Storage.DataDir == "" {
		return errors.New("data directory is required")
	}
	return nil
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
