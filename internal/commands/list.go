package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	showIDs bool
}

// SetShowIDs toggles the id column (for testing).
func (c *ListCmd) SetShowIDs(on bool) {
	c.showIDs = on
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todo list [--ids]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showIDs, "ids", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	ctrl := newController(ctx, cfg, svc)
	if err := ctrl.Initialize(ctx); err != nil {
		return reportError(errOut, err)
	}

	tasks := ctrl.Tasks()
	if len(tasks) == 0 && cfg.Quiet {
		return exitcode.Success
	}
	output.FormatTasks(out, tasks, c.showIDs)
	return exitcode.Success
}
