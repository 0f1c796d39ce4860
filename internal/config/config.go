package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/ui"
)

// FileName is the config file created under the user config directory
const FileName = "gpto.yaml"

// Compiled-in fallbacks, used when neither an override nor the config file provides a value
const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultEndpoint    = "https://api.openai.com"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxTokens   = 1000
	DefaultTemperature = 1.0
	DefaultTopP        = 1.0
	DefaultSampleCount = 1
	DefaultAPI         = APIChat
)

// API selects which completion endpoint and response shape is used
type API string

const (
	// APIChat uses /v1/chat/completions with a message list
	APIChat API = "chat"
	// APICompletions uses the legacy /v1/completions with a plain prompt
	APICompletions API = "completions"
)

// ParseAPI validates an API variant name
func ParseAPI(s string) (API, error) {
	switch API(strings.ToLower(strings.TrimSpace(s))) {
	case APIChat:
		return APIChat, nil
	case APICompletions:
		return APICompletions, nil
	}
	return "", fmt.Errorf("unknown api %q, expected %q or %q", s, APIChat, APICompletions)
}

// Config is the persisted configuration file
type Config struct {
	Token    string `yaml:"token"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	// Timeout is stored in whole seconds
	Timeout int `yaml:"timeout"`
	API     API `yaml:"api,omitempty"`

	Path string `yaml:"-"`
}

// New returns a config for token with every other field at its default
func New(token, path string) *Config {
	cfg := &Config{Token: token, Path: path}
	cfg.applyDefaults()
	return cfg
}

// TimeoutDuration converts the stored seconds into a duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Timeout <= 0 {
		c.Timeout = int(DefaultTimeout / time.Second)
	}
	if c.API == "" {
		c.API = DefaultAPI
	}
}

// LoadConfig loads configuration from a YAML file, filling absent fields with defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.API != "" {
		api, err := ParseAPI(string(cfg.API))
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.API = api
	}
	cfg.Path = path
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes the config to c.Path, readable by the owner only
func (c *Config) Save() error {
	if c.Path == "" {
		return errors.New("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", c.Path, err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/gpto.yaml (or the platform equivalent)
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return filepath.Join(dir, FileName), nil
}

// Store loads the config file, creating it on first run
type Store struct {
	prompter TokenPrompter
	out      io.Writer
	logger   *logger.Logger
}

// NewStore creates a store that asks prompter for a token when no file exists
// and reports file creation on out.
func NewStore(prompter TokenPrompter, out io.Writer) *Store {
	return &Store{
		prompter: prompter,
		out:      out,
		logger:   logger.GetLogger().WithComponent("config"),
	}
}

// LoadOrCreate loads the config at path (or DefaultPath when empty). When the
// file does not exist the user is asked for a token and a new file is written.
func (s *Store) LoadOrCreate(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		s.logger.Debug("Loading config from %s", path)
		return LoadConfig(path)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	s.logger.Info("No config at %s, creating one", path)
	if s.prompter == nil {
		return nil, ErrMissingCredential
	}
	token, err := s.prompter.PromptToken(tokenPromptMessage)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingCredential
	}

	cfg := New(token, path)
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	if s.out != nil {
		ui.Success(s.out, "Config successfully created in %s", path)
	}
	return cfg, nil
}
