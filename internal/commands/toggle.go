package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	id string
}

// SetID selects the task by server id (for testing).
func (c *ToggleCmd) SetID(id string) {
	c.id = id
}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip the completed state of tasks" }
func (c *ToggleCmd) Usage() string      { return "todo toggle (<n>... | --id <id>)" }
func (c *ToggleCmd) NeedsBackend() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctrl := newController(ctx, cfg, svc)
	targets, err := resolveTargets(ctx, ctrl, c.id, args)
	if err != nil {
		return reportError(errOut, err)
	}

	for _, task := range targets {
		if err := ctrl.ToggleTask(ctx, task); err != nil {
			return reportError(errOut, err)
		}
	}
	return ok(cfg, out)
}
