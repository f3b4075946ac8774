package usecase

import (
	"context"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
)

// NameRequestRepository looks up the legacy records of a name request.
// An unknown number yields an empty slice, not an error.
type NameRequestRepository interface {
	FindByRequestNumber(ctx context.Context, nameRequestNumber string) ([]domain.SourceRecord, error)
}

// IndexGateway upserts one document into the named core. A failure reported
// by the core comes back as domain.IndexUpdateError.
type IndexGateway interface {
	Update(ctx context.Context, core string, document domain.Document) error
}

// SyncPublisher announces the outcome of a sync attempt.
type SyncPublisher interface {
	Publish(ctx context.Context, event feeder.SyncEvent) error
}
