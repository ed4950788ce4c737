package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	id string
}

// SetID selects the task by server id (for testing).
func (c *RmCmd) SetID(id string) {
	c.id = id
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete tasks" }
func (c *RmCmd) Usage() string      { return "todo rm (<n>... | --id <id>)" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.id, "id", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ctrl := newController(ctx, cfg, svc)

	// Deleting by id needs no lookup; the server reports unknown ids.
	if c.id != "" {
		if len(args) > 0 {
			fmt.Fprintln(errOut, "error: cannot use both --id and task numbers")
			return exitcode.UserError
		}
		if err := ctrl.RemoveTask(ctx, c.id); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	}

	targets, err := resolveTargets(ctx, ctrl, "", args)
	if err != nil {
		return reportError(errOut, err)
	}
	for _, task := range targets {
		if err := ctrl.RemoveTask(ctx, task.ID); err != nil {
			return reportError(errOut, err)
		}
	}
	return ok(cfg, out)
}
