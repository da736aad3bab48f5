package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
)

// ErrRestartThrottled reports a restart refused by the command's rate limiter.
var ErrRestartThrottled = errors.New("commands: session restart throttled")

type restartService interface {
	Restart(ctx context.Context, sessionID string) (*dataset.Session, error)
}

// RestartSessionInput names the session to restart. Result, when set,
// receives the replacement session id.
type RestartSessionInput struct {
	SessionID string
	Result    *RestartSessionResult
}

// RestartSessionResult carries the outcome of a restart.
type RestartSessionResult struct {
	PreviousID string `json:"previous_id,omitempty"`
	SessionID  string `json:"session_id"`
}

// RestartSessionCommand drops a session's cached table so the next access refetches it.
type RestartSessionCommand struct {
	service   restartService
	telemetry Telemetry
	limiter   *rate.Limiter
}

// NewRestartSessionCommand creates a command instance.
func NewRestartSessionCommand(service restartService, telemetry Telemetry) *RestartSessionCommand {
	return &RestartSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

// WithLimiter caps how often restarts, and therefore refetches, may run.
func (c *RestartSessionCommand) WithLimiter(limiter *rate.Limiter) *RestartSessionCommand {
	c.limiter = limiter
	return c
}

var _ gocommand.Commander[RestartSessionInput] = (*RestartSessionCommand)(nil)

// Execute delegates to the dashboard service.
func (c *RestartSessionCommand) Execute(ctx context.Context, msg RestartSessionInput) error {
	if c.service == nil {
		return errors.New("restart command requires service")
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.telemetry.Record(ctx, "dashboard.command.restart", map[string]any{
			"previous_id": msg.SessionID,
			"error":       ErrRestartThrottled.Error(),
		})
		return ErrRestartThrottled
	}
	session, err := c.service.Restart(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		msg.Result.PreviousID = msg.SessionID
		msg.Result.SessionID = session.ID
	}
	c.telemetry.Record(ctx, "dashboard.command.restart", map[string]any{
		"previous_id": msg.SessionID,
		"session_id":  session.ID,
	})
	return nil
}
