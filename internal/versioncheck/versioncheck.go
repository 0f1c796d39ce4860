package versioncheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sleepstars/gpto/internal/clients"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/ui"
)

const (
	// DefaultURL is the module proxy's latest-version endpoint
	DefaultURL = "https://proxy.golang.org/github.com/sleepstars/gpto/@latest"
	// Probability is the chance that a run checks for a newer version
	Probability = 0.1
	// DefaultTimeout bounds the lookup
	DefaultTimeout = 5 * time.Second

	installHint = "Run `go install github.com/sleepstars/gpto/cmd/gpto@latest` to update."
)

// Checker looks up the latest published version and prints a notice when
// the running version differs
type Checker struct {
	URL       string
	Current   string
	Timeout   time.Duration
	Requester clients.Requester
	Out       io.Writer
	// Roll returns a number in [0, 1); a check runs when it is below Probability
	Roll func() float64

	logger *logger.Logger
}

type latestInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// New creates a checker for the running version writing notices to out
func New(current string, requester clients.Requester, out io.Writer) *Checker {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Checker{
		URL:       DefaultURL,
		Current:   current,
		Timeout:   DefaultTimeout,
		Requester: requester,
		Out:       out,
		Roll:      rng.Float64,
		logger:    logger.GetLogger().WithComponent("version_check"),
	}
}

// Latest fetches the newest published version
func (c *Checker) Latest(ctx context.Context) (string, error) {
	body, err := c.Requester.Execute(ctx, clients.Call{
		Method:  http.MethodGet,
		URL:     c.URL,
		Timeout: c.Timeout,
	})
	if err != nil {
		return "", err
	}

	var info latestInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("decode latest version: %w", err)
	}
	if info.Version == "" {
		return "", fmt.Errorf("no version in response")
	}
	return info.Version, nil
}

// Check prints a notice when a different version is published and reports
// whether it did
func (c *Checker) Check(ctx context.Context) (bool, error) {
	if isDevelopment(c.Current) {
		c.logger.Debug("Skipping version check for development build")
		return false, nil
	}

	latest, err := c.Latest(ctx)
	if err != nil {
		return false, err
	}
	if normalize(latest) == normalize(c.Current) {
		c.logger.Debug("Running the latest version %s", c.Current)
		return false, nil
	}

	ui.Notice(c.Out, "Latest gpto version is %s, found %s.\n%s", latest, c.Current, installHint)
	return true, nil
}

// Start rolls the dice and, when it hits, checks in a detached goroutine.
// Errors are logged, never returned. The returned channel is closed once
// the check finished or was skipped.
func (c *Checker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if c.Roll() >= Probability {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if _, err := c.Check(ctx); err != nil {
			c.logger.WithError(err).Debug("Version check failed")
		}
	}()
	return done
}

func isDevelopment(v string) bool {
	return v == "" || v == "dev" || v == "(devel)"
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
