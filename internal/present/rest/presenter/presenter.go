package presenter

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
)

func Message(c echo.Context, status int, msg string) error {
	return c.JSON(status, feeder.MessageResponse{Message: msg})
}

// Synced reports the outcome of a sync. Index core failures are passed
// through with the core's own status code and message.
func Synced(c echo.Context, err error) error {
	if err == nil {
		return Message(c, http.StatusOK, feeder.SyncSucceededMessage)
	}

	status := domain.StatusCode(err)
	msg := domain.Message(err)

	ctx := c.Request().Context()
	switch {
	case status >= http.StatusInternalServerError:
		slog.ErrorContext(ctx, "Sync failed", slog.Int("status", status), slog.String("error", err.Error()), slog.String("module", "rest"))
	case status == http.StatusNotFound:
		// already logged as a lookup miss
	default:
		slog.InfoContext(ctx, "Sync rejected", slog.Int("status", status), slog.String("error", err.Error()), slog.String("module", "rest"))
	}

	return Message(c, status, msg)
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func Healthy(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

func Unavailable(c echo.Context, err error) error {
	slog.WarnContext(c.Request().Context(), "Health check failed", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Error: err.Error()})
}
