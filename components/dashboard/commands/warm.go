package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
)

type warmService interface {
	Warm(ctx context.Context, sessionID string) (*dataset.Session, error)
}

// WarmSessionInput names the session to load. Blank means the default session.
type WarmSessionInput struct {
	SessionID string
}

// WarmSessionCommand loads the dataset for a session ahead of the first
// request so startup fails fast when the source is unreachable.
type WarmSessionCommand struct {
	service   warmService
	telemetry Telemetry
}

// NewWarmSessionCommand creates a command instance.
func NewWarmSessionCommand(service warmService, telemetry Telemetry) *WarmSessionCommand {
	return &WarmSessionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[WarmSessionInput] = (*WarmSessionCommand)(nil)

// Execute blocks until the session table is loaded or has failed.
func (c *WarmSessionCommand) Execute(ctx context.Context, msg WarmSessionInput) error {
	if c.service == nil {
		return errors.New("warm command requires service")
	}
	session, err := c.service.Warm(ctx, msg.SessionID)
	if err != nil {
		c.telemetry.Record(ctx, "dashboard.command.warm", map[string]any{
			"session_id": msg.SessionID,
			"error":      err.Error(),
		})
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.warm", map[string]any{
		"session_id": session.ID,
		"loaded_at":  session.LoadedAt(),
	})
	return nil
}
