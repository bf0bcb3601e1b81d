package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Client configures cmd/athena.
type Client struct {
	ServerURL      string        `toml:"server_url"`
	DBPath         string        `toml:"db_path"`
	LogFile        string        `toml:"log_file"`
	LogLevel       string        `toml:"log_level"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	TypingTimeout  time.Duration `toml:"typing_timeout"`
	MarkFallback   bool          `toml:"mark_fallback"`
}

// Server configures cmd/server.
type Server struct {
	Addr          string `toml:"addr"`
	OpenAIKey     string `toml:"-"`
	OpenAIBaseURL string `toml:"openai_base_url"`
	Model         string `toml:"model"`
	DBPath        string `toml:"db_path"`
	StaticDir     string `toml:"static_dir"`
	HistoryTokens int    `toml:"history_tokens"`
}

type file struct {
	Client Client `toml:"client"`
	Server Server `toml:"server"`
}

func defaults() file {
	dir := dataDir()
	return file{
		Client: Client{
			ServerURL:      "http://localhost:8100",
			DBPath:         filepath.Join(dir, "athena.db"),
			LogFile:        filepath.Join(dir, "athena.log"),
			LogLevel:       "info",
			RequestTimeout: 30 * time.Second,
			TypingTimeout:  10 * time.Second,
		},
		Server: Server{
			Addr:          ":8100",
			Model:         "gpt-4o-mini",
			DBPath:        "athena-memory.db",
			HistoryTokens: 3000,
		},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".athena"
	}
	return filepath.Join(home, ".athena")
}

// load applies .env, then the optional TOML file, then the environment.
func load() (file, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("ATHENA_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func LoadClient() (*Client, error) {
	f, err := load()
	if err != nil {
		return nil, err
	}
	c := f.Client
	c.ServerURL = getEnv("ATHENA_SERVER_URL", c.ServerURL)
	c.DBPath = getEnv("ATHENA_DB_PATH", c.DBPath)
	c.LogFile = getEnv("ATHENA_LOG_FILE", c.LogFile)
	c.LogLevel = getEnv("ATHENA_LOG_LEVEL", c.LogLevel)
	if c.RequestTimeout, err = getDuration("ATHENA_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return nil, err
	}
	if c.TypingTimeout, err = getDuration("ATHENA_TYPING_TIMEOUT", c.TypingTimeout); err != nil {
		return nil, err
	}
	c.MarkFallback = getBool("ATHENA_MARK_FALLBACK", c.MarkFallback)
	return &c, nil
}

func LoadServer() (*Server, error) {
	f, err := load()
	if err != nil {
		return nil, err
	}
	s := f.Server
	s.Addr = getEnv("ATHENA_ADDR", s.Addr)
	s.OpenAIKey = getEnv("OPENAI_API_KEY", s.OpenAIKey)
	s.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", s.OpenAIBaseURL)
	s.Model = getEnv("MODEL", s.Model)
	s.DBPath = getEnv("ATHENA_SERVER_DB", s.DBPath)
	s.StaticDir = getEnv("ATHENA_STATIC_DIR", s.StaticDir)
	if v := os.Getenv("ATHENA_HISTORY_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ATHENA_HISTORY_TOKENS: %w", err)
		}
		s.HistoryTokens = n
	}
	if s.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	return &s, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
