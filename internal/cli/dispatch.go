package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	baseURL   string
	timeout   time.Duration
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.baseURL, "base-url", "", "")
	fs.DurationVar(&f.timeout, "timeout", 0, "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// apply overrides cfg with the flags that were given explicitly.
func (f *commonFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "base-url":
			cfg.BaseURL = f.baseURL
		case "timeout":
			cfg.Timeout = f.timeout
		}
	})
	cfg.Quiet = f.quiet
	cfg.Debug = f.debug
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	// Build config: defaults, file, env, then flags
	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.ConfigError
	}
	common.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.ConfigError
	}

	logger := logging.New(errOut, logging.OptionsFor(cfg.LogLevel, cfg.Debug))
	ctx = log.WithContext(ctx, logger)
	logger.Debug("dispatch", "command", cmd.Name(), "base_url", cfg.BaseURL, "timeout", cfg.Timeout)

	var svc service.Service
	if cmd.NeedsBackend() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: backend error: no backend configured")
			return exitcode.BackendError
		}
		svc, err = d.factory(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	// Missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + name
	}

	// Unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
