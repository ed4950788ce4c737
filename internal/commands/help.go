package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// SetRegistry sets the registry listed by help (for testing).
func (c *HelpCmd) SetRegistry(r *Registry) {
	c.registry = r
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	registry := c.registry
	if registry == nil {
		registry = DefaultRegistry
	}

	fmt.Fprintln(out, "Usage:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  todo\tList tasks\n")
	for _, cmd := range registry.All() {
		synopsis := cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			synopsis += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), synopsis)
	}
	tw.Flush()
	fmt.Fprint(out, commonFlagsText)
	return exitcode.Success
}

const commonFlagsText = `
Common flags:
  --config <dir>       Override config directory
  --base-url <url>     Task server root (default ` + config.DefaultBaseURL + `)
  --timeout <dur>      Per-request timeout, e.g. 5s (default none)
  --quiet              Suppress informational output
  --debug              Print debug logs to stderr

Environment:
  ` + config.EnvBaseURL + `, ` + config.EnvTimeout + `, ` + config.EnvLogLevel + `
`
