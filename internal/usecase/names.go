package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/utils"
)

var tracer = otel.Tracer("usecase")

// Cores names the index cores a sync writes to.
type Cores struct {
	Names     string
	Conflicts string
}

type NamesUsecase struct {
	repo      NameRequestRepository
	index     IndexGateway
	publisher SyncPublisher
	cores     Cores
}

// NewNamesUsecase wires the sync of name requests. publisher may be nil.
func NewNamesUsecase(repo NameRequestRepository, index IndexGateway, publisher SyncPublisher, cores Cores) *NamesUsecase {
	if cores.Names == "" {
		cores.Names = domain.DefaultNamesCore
	}
	if cores.Conflicts == "" {
		cores.Conflicts = domain.DefaultConflictsCore
	}
	return &NamesUsecase{
		repo:      repo,
		index:     index,
		publisher: publisher,
		cores:     cores,
	}
}

// SyncByRequestNumber pushes every choice of a name request to the names core
// and, for approved or conditionally approved choices, to the possible
// conflicts core. It stops at the first failed update and returns it.
//
// Nothing is retried or rolled back here. Documents are derived
// deterministically and upserted by id, so the caller recovers from a
// failure by resubmitting the whole request number.
func (uc *NamesUsecase) SyncByRequestNumber(ctx context.Context, nameRequestNumber string) error {
	ctx, span := tracer.Start(ctx, "Names.Usecase.SyncByRequestNumber")
	defer span.End()

	if nameRequestNumber == "" {
		err := domain.ValidationError{Field: feeder.NameRequestNumberField}
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.String("nameRequestNumber", nameRequestNumber))

	var digests []feeder.DocumentDigest
	err := uc.syncRecords(ctx, nameRequestNumber, &digests)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Int("documents", len(digests)))

	uc.publish(ctx, nameRequestNumber, digests, err)

	return err
}

func (uc *NamesUsecase) syncRecords(ctx context.Context, nameRequestNumber string, digests *[]feeder.DocumentDigest) error {
	records, err := uc.repo.FindByRequestNumber(ctx, nameRequestNumber)
	if err != nil {
		return pkgerrors.Wrap(err, "NamesUsecase.SyncByRequestNumber: repo.FindByRequestNumber failed")
	}

	if len(records) == 0 {
		slog.InfoContext(
			ctx, fmt.Sprintf("Names lookup of %q failed", nameRequestNumber),
			slog.String("module", "names"),
		)
		return domain.NotFoundError{Field: feeder.NameRequestNumberField, Key: nameRequestNumber}
	}

	for _, record := range records {
		slog.InfoContext(
			ctx, fmt.Sprintf("Names lookup of %q succeeded", NamesDocumentID(record)),
			slog.String("module", "names"),
		)

		err := uc.update(ctx, uc.cores.Names, ToNamesDocument(record), digests)
		if err != nil {
			return err
		}

		if !IsConflictCandidate(stringValue(record.NameStateCode)) {
			continue
		}

		err = uc.update(ctx, uc.cores.Conflicts, ToConflictDocument(record), digests)
		if err != nil {
			return err
		}
	}

	return nil
}

func (uc *NamesUsecase) update(ctx context.Context, core string, doc domain.Document, digests *[]feeder.DocumentDigest) error {
	id, _ := doc.Get("id")
	digest := feeder.DocumentDigest{Core: core, ID: fmt.Sprint(id)}
	if fp, err := utils.Fingerprint(doc); err == nil {
		digest.XXH3 = fp
	}

	err := uc.index.Update(ctx, core, doc)
	digest.Landed = err == nil
	*digests = append(*digests, digest)

	if err == nil {
		return nil
	}

	var indexErr domain.IndexUpdateError
	if errors.As(err, &indexErr) {
		return indexErr
	}
	return domain.IndexUpdateError{
		Core:       core,
		DocumentID: digest.ID,
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
	}
}

func (uc *NamesUsecase) publish(ctx context.Context, nameRequestNumber string, digests []feeder.DocumentDigest, outcome error) {
	if uc.publisher == nil {
		return
	}

	event := feeder.SyncEvent{
		NameRequestNumber: nameRequestNumber,
		Status:            feeder.SyncStatusSucceeded,
		StatusCode:        http.StatusOK,
		Message:           feeder.SyncSucceededMessage,
		Documents:         digests,
		FinishedAt:        time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		event.TraceID = sc.TraceID().String()
	}
	if outcome != nil {
		event.Status = feeder.SyncStatusFailed
		event.StatusCode = domain.StatusCode(outcome)
		event.Message = domain.Message(outcome)
	}

	err := uc.publisher.Publish(ctx, event)
	if err != nil {
		slog.WarnContext(
			ctx, "Failed to publish sync event",
			slog.String("error", err.Error()),
			slog.String("nameRequestNumber", nameRequestNumber),
			slog.String("module", "names"),
		)
	}
}
