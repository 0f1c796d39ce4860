package config

import (
	"errors"
	"strings"
	"time"

	"github.com/sleepstars/gpto/internal/models"
)

// ErrMissingCredential means no API token was found in any source
var ErrMissingCredential = errors.New("no API token configured: set token in the config file or GPTO_TOKEN")

// Overrides holds per-invocation values. A nil field was not supplied.
type Overrides struct {
	Token          *string
	Model          *string
	Endpoint       *string
	Timeout        *time.Duration
	MaxTokens      *int
	Temperature    *float64
	TopP           *float64
	SampleCount    *int
	Suffix         *string
	DisableSpinner *bool
	API            *API
}

// EffectiveConfig is the fully resolved request configuration for one invocation
type EffectiveConfig struct {
	Token          string
	Model          string
	Endpoint       string
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float64
	TopP           float64
	SampleCount    int
	Suffix         string
	DisableSpinner bool
	API            API
}

// Params returns the sampling parameters carried by every request
func (c EffectiveConfig) Params() models.Params {
	return models.Params{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		SampleCount: c.SampleCount,
		Temperature: c.Temperature,
		TopP:        c.TopP,
	}
}

// Resolve merges overrides, the persisted config and the compiled-in
// fallbacks. For every field an override wins over the persisted value, which
// wins over the fallback. The token has no fallback.
func Resolve(o Overrides, persisted *Config) (EffectiveConfig, error) {
	if persisted == nil {
		persisted = &Config{}
	}

	token := pick(o.Token, strings.TrimSpace(persisted.Token), "")
	if strings.TrimSpace(token) == "" {
		return EffectiveConfig{}, ErrMissingCredential
	}

	var persistedTimeout time.Duration
	if persisted.Timeout > 0 {
		persistedTimeout = persisted.TimeoutDuration()
	}

	return EffectiveConfig{
		Token:          token,
		Model:          pick(o.Model, strings.TrimSpace(persisted.Model), DefaultModel),
		Endpoint:       pick(o.Endpoint, strings.TrimSpace(persisted.Endpoint), DefaultEndpoint),
		Timeout:        pick(o.Timeout, persistedTimeout, DefaultTimeout),
		MaxTokens:      pick(o.MaxTokens, 0, DefaultMaxTokens),
		Temperature:    pick(o.Temperature, 0, DefaultTemperature),
		TopP:           pick(o.TopP, 0, DefaultTopP),
		SampleCount:    pick(o.SampleCount, 0, DefaultSampleCount),
		Suffix:         pick(o.Suffix, "", ""),
		DisableSpinner: pick(o.DisableSpinner, false, false),
		API:            pick(o.API, persisted.API, DefaultAPI),
	}, nil
}

// pick returns the override when present, else the persisted value when it is
// not the zero value, else the fallback.
func pick[T comparable](override *T, persisted, fallback T) T {
	if override != nil {
		return *override
	}
	var zero T
	if persisted != zero {
		return persisted
	}
	return fallback
}
