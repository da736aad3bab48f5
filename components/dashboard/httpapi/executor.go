package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
)

// Executor runs session commands on behalf of a transport.
type Executor interface {
	Warm(ctx context.Context, input commands.WarmSessionInput) error
	Restart(ctx context.Context, input commands.RestartSessionInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	WarmCommander    gocommand.Commander[commands.WarmSessionInput]
	RestartCommander gocommand.Commander[commands.RestartSessionInput]
}

var _ Executor = (*CommandExecutor)(nil)

// Warm executes the warm commander.
func (e *CommandExecutor) Warm(ctx context.Context, input commands.WarmSessionInput) error {
	if e.WarmCommander == nil {
		return errors.New("httpapi: warm commander not configured")
	}
	return e.WarmCommander.Execute(ctx, input)
}

// Restart executes the restart commander.
func (e *CommandExecutor) Restart(ctx context.Context, input commands.RestartSessionInput) error {
	if e.RestartCommander == nil {
		return errors.New("httpapi: restart commander not configured")
	}
	return e.RestartCommander.Execute(ctx, input)
}
