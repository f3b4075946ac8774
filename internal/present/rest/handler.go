package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/present/rest/presenter"
	"github.com/totegamma/solr-feeder/internal/service"
	"github.com/totegamma/solr-feeder/internal/usecase"
)

const maxRequestBody = 64 * 1024

// HealthCheck probes one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// EventSource streams sync events for /realtime.
type EventSource interface {
	Realtime(ctx context.Context, input <-chan []string, output chan<- feeder.SyncEvent)
}

type Handler struct {
	names  *usecase.NamesUsecase
	lock   service.KeyLock
	events EventSource
	checks []HealthCheck
}

// NewHandler builds the feed endpoints. lock and events may be nil, which
// disables per-key exclusion and the realtime stream.
func NewHandler(
	names *usecase.NamesUsecase,
	lock service.KeyLock,
	events EventSource,
	checks ...HealthCheck,
) *Handler {
	return &Handler{
		names:  names,
		lock:   lock,
		events: events,
		checks: checks,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/feeds/names", h.handleNames)
	e.POST("/api/v1/feeds/corporations", h.handleCorporations)
	e.GET("/healthz", h.handleHealth)
	if h.events != nil {
		e.GET("/realtime", h.handleRealtime)
	}
}

// handleCorporations accepts corporation feeds without acting on them yet.
func (h *Handler) handleCorporations(c echo.Context) error {
	return presenter.Message(c, http.StatusOK, "Okie dokie")
}

func (h *Handler) handleNames(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBody))
	if err != nil {
		return presenter.Synced(c, domain.ValidationError{Field: feeder.NameRequestNumberField})
	}
	slog.DebugContext(ctx, fmt.Sprintf("request raw data: %s", body), slog.String("module", "rest"))

	nameRequestNumber, ok := parseNameRequestNumber(body)
	if !ok {
		return presenter.Synced(c, domain.ValidationError{Field: feeder.NameRequestNumberField})
	}

	if h.lock != nil && nameRequestNumber != "" {
		acquired, err := h.lock.Acquire(ctx, nameRequestNumber)
		if err != nil {
			slog.WarnContext(
				ctx, "Key lock unavailable, syncing without it",
				slog.String("error", err.Error()),
				slog.String("module", "rest"),
			)
		} else if !acquired {
			return presenter.Synced(c, domain.KeyBusyError{Field: feeder.NameRequestNumberField, Key: nameRequestNumber})
		} else {
			defer func() {
				if err := h.lock.Release(context.WithoutCancel(ctx), nameRequestNumber); err != nil {
					slog.WarnContext(ctx, "Failed to release key lock", slog.String("error", err.Error()), slog.String("module", "rest"))
				}
			}()
		}
	}

	err = h.names.SyncByRequestNumber(ctx, nameRequestNumber)
	return presenter.Synced(c, err)
}

// parseNameRequestNumber extracts the name request number from a JSON
// object body. It fails when the body is not an object or the field is
// missing, null or not a string.
func parseNameRequestNumber(body []byte) (string, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return "", false
	}

	raw, ok := payload[feeder.NameRequestNumberField]
	if !ok || string(raw) == "null" {
		return "", false
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func (h *Handler) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			return presenter.Unavailable(c, fmt.Errorf("%s: %v", check.Name, err))
		}
	}
	return presenter.Healthy(c)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type               string   `json:"type"`
	NameRequestNumbers []string `json:"nameRequestNumbers"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan feeder.SyncEvent)

	go h.events.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.NameRequestNumbers:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.NameRequestNumbers),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
