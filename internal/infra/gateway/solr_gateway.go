package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/solr-feeder/client"
	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/usecase"
	"github.com/totegamma/solr-feeder/internal/utils"
)

var tracer = otel.Tracer("gateway")

type SolrGateway struct {
	client *client.Client
}

func NewSolrGateway(cl *client.Client) *SolrGateway {
	return &SolrGateway{client: cl}
}

// Update upserts document into core. Every failure is reported as
// domain.IndexUpdateError; transport failures carry a 500.
func (g *SolrGateway) Update(ctx context.Context, core string, document domain.Document) error {
	ctx, span := tracer.Start(ctx, "Solr.Gateway.Update")
	defer span.End()

	id, _ := document.Get("id")
	documentID := fmt.Sprint(id)
	span.SetAttributes(attribute.String("core", core), attribute.String("id", documentID))

	body, err := json.Marshal(document)
	if err != nil {
		span.RecordError(err)
		return domain.IndexUpdateError{
			Core:       core,
			DocumentID: documentID,
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("failed to encode document %s: %v", documentID, err),
		}
	}

	hash := utils.FingerprintBytes(body)
	span.SetAttributes(attribute.String("xxh3", hash))

	err = g.client.UpdateRaw(ctx, core, body)
	if err == nil {
		slog.DebugContext(
			ctx, "Solr core updated",
			slog.String("core", core),
			slog.String("id", documentID),
			slog.String("xxh3", hash),
			slog.String("module", "solr"),
		)
		return nil
	}
	span.RecordError(err)

	updateErr := domain.IndexUpdateError{Core: core, DocumentID: documentID}

	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		updateErr.StatusCode = statusErr.StatusCode
		updateErr.Message = statusErr.Message
	} else {
		updateErr.StatusCode = http.StatusInternalServerError
		updateErr.Message = fmt.Sprintf("failed to reach solr core %s: %v", core, err)
	}

	slog.ErrorContext(
		ctx, "Solr core update failed",
		slog.String("core", core),
		slog.String("id", documentID),
		slog.String("xxh3", hash),
		slog.Int("status", updateErr.StatusCode),
		slog.String("error", updateErr.Message),
		slog.String("module", "solr"),
	)

	return updateErr
}

// Ping checks every given core.
func (g *SolrGateway) Ping(ctx context.Context, cores ...string) error {
	for _, core := range cores {
		if err := g.client.Ping(ctx, core); err != nil {
			return fmt.Errorf("core %s: %v", core, err)
		}
	}
	return nil
}

var _ usecase.IndexGateway = (*SolrGateway)(nil)
