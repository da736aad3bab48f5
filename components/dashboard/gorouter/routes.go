package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
)

// SessionResolver picks the session id for a request.
type SessionResolver func(router.Context) string

// Config wires go-router with the dashboard controller and command executor.
type Config[T any] struct {
	Router          router.Router[T]
	Controller      *dashboard.Controller
	API             httpapi.Executor
	SessionResolver SessionResolver
	BasePath        string
	Routes          RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML     string
	Snapshot string
	Options  string
	Restart  string
}

// Register mounts dashboard routes (HTML, JSON, session control) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	resolver := cfg.SessionResolver
	if resolver == nil {
		resolver = defaultSessionResolver
	}

	r := cfg.Router
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		r = cfg.Router.Group(base)
	}

	r.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		sel, err := dashboard.ParseSelection(queryLookup(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		var buf bytes.Buffer
		if err := cfg.Controller.RenderHTML(ctx.Context(), resolver(ctx), sel, &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	r.Get(routes.Snapshot, router.WrapHandler(func(ctx router.Context) error {
		sel, err := dashboard.ParseSelection(queryLookup(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		snap, err := cfg.Controller.Snapshot(ctx.Context(), resolver(ctx), sel)
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader(dashboard.SessionHeader, snap.SessionID)
		return ctx.JSON(http.StatusOK, snap)
	}))

	r.Get(routes.Options, router.WrapHandler(func(ctx router.Context) error {
		options, err := cfg.Controller.Options(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader(dashboard.SessionHeader, options.SessionID)
		return ctx.JSON(http.StatusOK, options)
	}))

	if cfg.API != nil {
		registerAPI(r, cfg.API, resolver, routes)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver SessionResolver, routes RouteConfig) {
	r.Post(routes.Restart, router.WrapHandler(func(ctx router.Context) error {
		input := commands.RestartSessionInput{SessionID: resolver(ctx)}
		if body := ctx.Body(); len(bytes.TrimSpace(body)) > 0 {
			var payload struct {
				SessionID string `json:"session_id"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return ctx.JSON(http.StatusBadRequest, httpapi.ErrorBody{Error: err.Error(), Status: http.StatusBadRequest})
			}
			if payload.SessionID != "" {
				input.SessionID = payload.SessionID
			}
		}
		result := &commands.RestartSessionResult{}
		input.Result = result
		if err := api.Restart(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader(dashboard.SessionHeader, result.SessionID)
		return ctx.JSON(http.StatusOK, result)
	}))
}

func defaultSessionResolver(ctx router.Context) string {
	if id, ok := ctx.Locals("dashboard_session").(string); ok && id != "" {
		return id
	}
	if id := strings.TrimSpace(ctx.Header(dashboard.SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(ctx.Query(dashboard.QuerySession))
}

// queryLookup treats blank parameters as absent; go-router exposes only the first value.
func queryLookup(ctx router.Context) dashboard.QueryLookup {
	return func(key string) (string, bool) {
		value := ctx.Query(key)
		return value, value != ""
	}
}

func respondError(ctx router.Context, err error) error {
	status := httpapi.StatusFor(err)
	return ctx.JSON(status, httpapi.ErrorBody{Error: err.Error(), Status: status})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/sales"
	}
	if routes.Snapshot == "" {
		routes.Snapshot = "/sales/_snapshot"
	}
	if routes.Options == "" {
		routes.Options = "/sales/_options"
	}
	if routes.Restart == "" {
		routes.Restart = "/sales/session/restart"
	}
	return routes
}
