// Package config loads service settings from a YAML file and the
// environment. Environment variables win over the file; the file wins
// over defaults. With STRICT_CONFIG set, load and validation problems
// are fatal instead of logged.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration.
type Config struct {
	Environment   string
	HTTPPort      string
	InboxDir      string
	WorkDir       string
	OutputDir     string
	DBPath        string
	EnableWatcher bool
	WorkerCount   int
	QueueSize     int
	RunTimeoutSec int
	WebhookURL    string
	StrictConfig  bool

	Sentiment SentimentConfig
	Keywords  KeywordConfig
	WordCloud WordCloudConfig
}

// SentimentConfig selects and tunes the sentiment backend.
type SentimentConfig struct {
	// Backend is "lexicon" or "remote".
	Backend  string
	Endpoint string
	Token    string
	RPS      float64
}

type KeywordConfig struct {
	TopN int
}

type WordCloudConfig struct {
	MaxWords int
}

type fileConfig struct {
	HTTPPort  string `yaml:"http_port"`
	InboxDir  string `yaml:"inbox_dir"`
	WorkDir   string `yaml:"work_dir"`
	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`
	Sentiment struct {
		Backend  string   `yaml:"backend"`
		Endpoint string   `yaml:"endpoint"`
		RPS      *float64 `yaml:"rps"`
	} `yaml:"sentiment"`
	Keywords struct {
		TopN *int `yaml:"top_n"`
	} `yaml:"keywords"`
	WordCloud struct {
		MaxWords *int `yaml:"max_words"`
	} `yaml:"wordcloud"`
	Notify struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"notify"`
}

const (
	defaultPort        = ":8000"
	defaultInboxDir    = "runtime/inbox"
	defaultWorkDir     = "runtime/work"
	defaultOutputDir   = "runtime/output"
	defaultDBFile      = "insights.db"
	defaultWorkerCount = 4
	defaultQueueSize   = 64
	maxQueueSize       = 1024
	defaultRunTimeout  = 600
	defaultTopN        = 20
	defaultMaxWords    = 200
	defaultRemoteRPS   = 2.0

	BackendLexicon = "lexicon"
	BackendRemote  = "remote"
)

// Load reads configuration from CONFIG_PATH (default config/config.yaml)
// and the environment.
func Load() (Config, error) {
	cfg := Config{
		Environment:   getEnv("APP_ENV", "local"),
		EnableWatcher: parseBoolEnvDefault("ENABLE_WATCHER", true),
		WorkerCount:   defaultWorkerCount,
		QueueSize:     defaultQueueSize,
		RunTimeoutSec: defaultRunTimeout,
		StrictConfig:  parseBoolEnv("STRICT_CONFIG"),
		Sentiment: SentimentConfig{
			Backend: BackendLexicon,
			Token:   os.Getenv("SENTIMENT_TOKEN"),
			RPS:     defaultRemoteRPS,
		},
		Keywords:  KeywordConfig{TopN: defaultTopN},
		WordCloud: WordCloudConfig{MaxWords: defaultMaxWords},
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.InboxDir = firstNonEmpty(os.Getenv("INBOX_DIR"), fileCfg.InboxDir, defaultInboxDir)
	cfg.WorkDir = firstNonEmpty(os.Getenv("WORK_DIR"), fileCfg.WorkDir, defaultWorkDir)
	cfg.OutputDir = firstNonEmpty(os.Getenv("OUTPUT_DIR"), fileCfg.OutputDir, defaultOutputDir)
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	} else if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	} else {
		cfg.DBPath = filepath.Join(cfg.WorkDir, defaultDBFile)
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid WORKER_COUNT=%q, using default %d", v, defaultWorkerCount)
			n = defaultWorkerCount
		}
		cfg.WorkerCount = n
	}

	if v, ok, err := parseIntEnv("QUEUE_SIZE"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid QUEUE_SIZE: %w", err)
		}
		log.Printf("invalid QUEUE_SIZE: %v (using default)", err)
	} else if ok {
		if v < 1 {
			log.Printf("QUEUE_SIZE raised to minimum 1 (was %d)", v)
			v = 1
		}
		if v > maxQueueSize {
			log.Printf("QUEUE_SIZE capped at %d (was %d)", maxQueueSize, v)
			v = maxQueueSize
		}
		cfg.QueueSize = v
	}

	if v, ok, err := parseIntEnv("RUN_TIMEOUT_SEC"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid RUN_TIMEOUT_SEC: %w", err)
		}
		log.Printf("invalid RUN_TIMEOUT_SEC: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.RunTimeoutSec = v
	}

	cfg.WebhookURL = firstNonEmpty(os.Getenv("NOTIFY_WEBHOOK_URL"), fileCfg.Notify.WebhookURL)

	cfg.Sentiment.Backend = firstNonEmpty(os.Getenv("SENTIMENT_BACKEND"), fileCfg.Sentiment.Backend, cfg.Sentiment.Backend)
	cfg.Sentiment.Endpoint = firstNonEmpty(os.Getenv("SENTIMENT_ENDPOINT"), fileCfg.Sentiment.Endpoint)
	if fileCfg.Sentiment.RPS != nil && *fileCfg.Sentiment.RPS > 0 {
		cfg.Sentiment.RPS = *fileCfg.Sentiment.RPS
	}
	if v, ok, err := parseFloatEnv("SENTIMENT_RPS"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid SENTIMENT_RPS: %w", err)
		}
		log.Printf("invalid SENTIMENT_RPS: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.Sentiment.RPS = v
	}

	if fileCfg.Keywords.TopN != nil && *fileCfg.Keywords.TopN > 0 {
		cfg.Keywords.TopN = *fileCfg.Keywords.TopN
	}
	if v, ok, err := parseIntEnv("KEYWORD_TOP_N"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid KEYWORD_TOP_N: %w", err)
		}
		log.Printf("invalid KEYWORD_TOP_N: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.Keywords.TopN = v
	}

	if fileCfg.WordCloud.MaxWords != nil && *fileCfg.WordCloud.MaxWords > 0 {
		cfg.WordCloud.MaxWords = *fileCfg.WordCloud.MaxWords
	}
	if v, ok, err := parseIntEnv("WORDCLOUD_MAX_WORDS"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid WORDCLOUD_MAX_WORDS: %w", err)
		}
		log.Printf("invalid WORDCLOUD_MAX_WORDS: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.WordCloud.MaxWords = v
	}

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}
	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InboxDir) == "" {
		return errors.New("INBOX_DIR is required")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return errors.New("HTTP_PORT is required")
	}
	switch cfg.Sentiment.Backend {
	case BackendLexicon:
	case BackendRemote:
		if strings.TrimSpace(cfg.Sentiment.Endpoint) == "" {
			return errors.New("sentiment backend remote requires SENTIMENT_ENDPOINT")
		}
	default:
		return fmt.Errorf("unknown sentiment backend %q", cfg.Sentiment.Backend)
	}
	if cfg.Keywords.TopN <= 0 {
		return errors.New("keyword top_n must be positive")
	}
	if cfg.WordCloud.MaxWords <= 0 {
		return errors.New("wordcloud max_words must be positive")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	if strings.TrimSpace(os.Getenv(key)) == "" {
		return defaultVal
	}
	return parseBoolEnv(key)
}

func parseIntEnv(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(raw)
	return val, true, err
}

func parseFloatEnv(key string) (float64, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, true, err
}

// Now returns utc time helper for deterministic timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
