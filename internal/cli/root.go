package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sleepstars/gpto/internal/clients"
	"github.com/sleepstars/gpto/internal/config"
	"github.com/sleepstars/gpto/internal/logger"
	"github.com/sleepstars/gpto/internal/modelbridge"
	"github.com/sleepstars/gpto/internal/orchestrator"
	"github.com/sleepstars/gpto/internal/ui"
	"github.com/sleepstars/gpto/internal/versioncheck"
)

// Version is set at build time with -ldflags "-X github.com/sleepstars/gpto/internal/cli.Version=..."
var Version = "dev"

const (
	// TokenEnv overrides the persisted token
	TokenEnv = "GPTO_TOKEN"
	// LogLevelEnv sets the log level by name; --verbose still forces debug
	LogLevelEnv = "GPTO_LOG_LEVEL"
)

var (
	// ErrNoParameters is returned when gpto runs without any flag
	ErrNoParameters = errors.New("gpto cannot be run without parameters. To see available parameters use --help")
	// ErrInvalidParameters is returned for flag combinations that select no single mode
	ErrInvalidParameters = errors.New("Invalid parameters. To see available parameters use --help")
)

// versionNoticeWait bounds how long a finished run waits for a started version check
const versionNoticeWait = time.Second

// App holds the process streams and collaborators of one run
type App struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Getenv func(string) string

	// Prompter asks for a token when no config file exists
	Prompter config.TokenPrompter
	// Requester overrides the HTTP executor
	Requester clients.Requester
	// CheckVersion enables the occasional latest-version lookup
	CheckVersion bool
	// VersionRoll replaces the version check's dice roll
	VersionRoll func() float64
}

// DefaultApp wires the real terminal
func DefaultApp() *App {
	return &App{
		In:           os.Stdin,
		Out:          os.Stdout,
		Err:          os.Stderr,
		Getenv:       os.Getenv,
		Prompter:     config.SurveyPrompter{},
		CheckVersion: true,
	}
}

type options struct {
	prompts        []string
	suffixes       []string
	stdin          bool
	configPath     string
	number         int
	model          string
	models         bool
	conversation   bool
	instructions   string
	endpoint       string
	timeout        int
	maxTokens      int
	temperature    float64
	topP           float64
	disableSpinner bool
	api            string
	verbose        bool
}

// Execute runs gpto with os.Args
func Execute() error {
	return DefaultApp().Command().Execute()
}

// Command builds the root command bound to a
func (a *App) Command() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "gpto",
		Short:   "A tiny unofficial OpenAI client",
		Version: Version,
		Long: `gpto sends prompts to an OpenAI compatible completion API and prints the
completions. It can also hold a multi-turn conversation or list the available models.`,
		Example: `  # Complete a prompt
  $ gpto -p "Write a haiku about Go"

  # Three completions with a suffix
  $ gpto -n 3 -s "(end)" -p "Name a color"

  # Pipe a file in after the prompt
  $ cat main.go | gpto --stdin -p "Explain this code"

  # Start a conversation with instructions
  $ gpto -c -i "You are a terse assistant"

  # List available models
  $ gpto -d`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return ErrInvalidParameters
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, opts)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)
	cmd.SetFlagErrorFunc(func(*cobra.Command, error) error {
		return ErrInvalidParameters
	})

	f := cmd.Flags()
	f.StringArrayVarP(&opts.prompts, "prompt", "p", nil, "The prompt(s) to generate completions for, joined by spaces")
	f.BoolVar(&opts.stdin, "stdin", false, "Append standard input to the prompt")
	f.StringArrayVarP(&opts.suffixes, "suffix", "s", nil, "Text appended to the completions. Defaults to an empty string")
	f.StringVarP(&opts.configPath, "config", "o", "", "Path of the configuration file. Defaults to $XDG_CONFIG_HOME/"+config.FileName)
	f.IntVarP(&opts.number, "number", "n", config.DefaultSampleCount, "How many completions to generate for each prompt")
	f.StringVarP(&opts.model, "model", "m", config.DefaultModel, "Model to use. Use --models to see the complete list")
	f.BoolVarP(&opts.models, "models", "d", false, "List the models available to your token")
	f.BoolVarP(&opts.conversation, "conversation", "c", false, "Start an interactive conversation")
	f.StringVarP(&opts.instructions, "instructions", "i", "", "System instructions for the conversation")
	f.StringVarP(&opts.endpoint, "endpoint", "e", config.DefaultEndpoint, "Base URL of the API")
	f.IntVarP(&opts.timeout, "timeout", "t", int(config.DefaultTimeout/time.Second), "Request timeout in seconds")
	f.IntVar(&opts.maxTokens, "max-tokens", config.DefaultMaxTokens, "Maximum number of tokens per completion")
	f.Float64Var(&opts.temperature, "temperature", config.DefaultTemperature, "Sampling temperature between 0 and 2")
	f.Float64Var(&opts.topP, "top-p", config.DefaultTopP, "Nucleus sampling probability mass")
	f.BoolVar(&opts.disableSpinner, "disable-spinner", false, "Do not show a spinner while waiting")
	f.StringVar(&opts.api, "api", string(config.DefaultAPI), "API variant: chat or completions")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	return cmd
}

func (a *App) run(cmd *cobra.Command, opts *options) error {
	log := logger.GetLogger()
	if opts.verbose {
		log.SetLevel(logger.DEBUG)
	}
	log = log.WithComponent("cli")

	if cmd.Flags().NFlag() == 0 {
		return ErrNoParameters
	}

	if a.getenv("NO_DOTENV") != "1" {
		var files []string
		if envFile := a.getenv("ENV_FILE"); envFile != "" {
			files = append(files, envFile)
		}
		if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("Could not load .env")
		}
	}
	if level := a.getenv(LogLevelEnv); level != "" && !opts.verbose {
		log.SetLevel(logger.ParseLevel(level))
	}

	req, err := a.request(cmd, opts)
	if err != nil {
		return err
	}

	overrides, err := overridesFrom(cmd, opts, a.getenv(TokenEnv))
	if err != nil {
		return err
	}

	persisted, err := config.NewStore(a.Prompter, a.Out).LoadOrCreate(opts.configPath)
	if err != nil {
		return err
	}

	requester := a.Requester
	if requester == nil {
		requester = clients.NewExecutor(clients.WithUserAgent("gpto/" + Version))
	}

	cfg, err := config.Resolve(overrides, persisted)
	if err != nil {
		return err
	}

	var versionDone <-chan struct{}
	if a.CheckVersion {
		versionDone = a.checker(requester).Start(context.Background())
	}
	log.Debug("Resolved model=%s endpoint=%s api=%s mode=%s", cfg.Model, cfg.Endpoint, cfg.API, req.Mode)

	if req.Mode == orchestrator.Conversation {
		if cfg.API != config.APIChat {
			return modelbridge.ErrChatRequired
		}
		fmt.Fprintln(a.Out, ui.Banner(cfg.Model))
	}

	d := orchestrator.NewDispatcher(modelbridge.NewModelBridge(requester), a.In, a.Out)
	res, err := d.Dispatch(context.Background(), cfg, req)
	if err != nil {
		return err
	}

	switch req.Mode {
	case orchestrator.ListModels:
		ui.Models(a.Out, res.Models)
	case orchestrator.Prompt:
		fmt.Fprintln(a.Out, res.Text)
	}

	if versionDone != nil {
		select {
		case <-versionDone:
		case <-time.After(versionNoticeWait):
		}
	}
	return nil
}

// request validates the flag combination and reads the prompt text
func (a *App) request(cmd *cobra.Command, opts *options) (orchestrator.Request, error) {
	changed := cmd.Flags().Changed
	hasPrompt := changed("prompt") || opts.stdin

	switch {
	case opts.models:
		if hasPrompt || opts.conversation || changed("number") || changed("suffix") || changed("instructions") {
			return orchestrator.Request{}, ErrInvalidParameters
		}
		return orchestrator.Request{Mode: orchestrator.ListModels}, nil

	case opts.conversation:
		if hasPrompt {
			return orchestrator.Request{}, ErrInvalidParameters
		}
		req := orchestrator.Request{Mode: orchestrator.Conversation}
		if changed("instructions") {
			instructions := opts.instructions
			req.Instructions = &instructions
		}
		return req, nil

	case changed("instructions"):
		return orchestrator.Request{}, ErrInvalidParameters
	}

	text := strings.Join(opts.prompts, " ")
	if opts.stdin {
		data, err := io.ReadAll(a.In)
		if err != nil {
			return orchestrator.Request{}, &orchestrator.InputError{Err: err}
		}
		text = appendInput(text, string(data))
	}
	if strings.TrimSpace(text) == "" {
		return orchestrator.Request{}, orchestrator.ErrNoPrompt
	}
	return orchestrator.Request{Mode: orchestrator.Prompt, Text: text}, nil
}

func appendInput(text, input string) string {
	input = strings.TrimRight(input, "\r\n")
	if text == "" {
		return input
	}
	return text + "\n" + input
}

// overridesFrom keeps only flags the user actually set
func overridesFrom(cmd *cobra.Command, opts *options, envToken string) (config.Overrides, error) {
	changed := cmd.Flags().Changed
	var o config.Overrides

	if token := strings.TrimSpace(envToken); token != "" {
		o.Token = &token
	}
	if changed("model") {
		if strings.TrimSpace(opts.model) == "" {
			return o, fmt.Errorf("model must not be empty")
		}
		o.Model = &opts.model
	}
	if changed("endpoint") {
		if strings.TrimSpace(opts.endpoint) == "" {
			return o, fmt.Errorf("endpoint must not be empty")
		}
		o.Endpoint = &opts.endpoint
	}
	if changed("timeout") {
		if opts.timeout <= 0 {
			return o, fmt.Errorf("timeout must be positive, got %d", opts.timeout)
		}
		d := time.Duration(opts.timeout) * time.Second
		o.Timeout = &d
	}
	if changed("max-tokens") {
		if opts.maxTokens <= 0 {
			return o, fmt.Errorf("max-tokens must be positive, got %d", opts.maxTokens)
		}
		o.MaxTokens = &opts.maxTokens
	}
	if changed("number") {
		if opts.number <= 0 {
			return o, fmt.Errorf("number must be positive, got %d", opts.number)
		}
		o.SampleCount = &opts.number
	}
	if changed("temperature") {
		o.Temperature = &opts.temperature
	}
	if changed("top-p") {
		o.TopP = &opts.topP
	}
	if changed("suffix") {
		suffix := strings.Join(opts.suffixes, " ")
		o.Suffix = &suffix
	}
	if changed("disable-spinner") {
		o.DisableSpinner = &opts.disableSpinner
	}
	if changed("api") {
		api, err := config.ParseAPI(opts.api)
		if err != nil {
			return o, err
		}
		o.API = &api
	}
	return o, nil
}

func (a *App) checker(requester clients.Requester) *versioncheck.Checker {
	c := versioncheck.New(Version, requester, a.Err)
	if a.VersionRoll != nil {
		c.Roll = a.VersionRoll
	}
	return c
}

func (a *App) getenv(key string) string {
	if a.Getenv == nil {
		return os.Getenv(key)
	}
	return a.Getenv(key)
}
