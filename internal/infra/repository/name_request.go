package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/infra/database/models"
	"github.com/totegamma/solr-feeder/internal/usecase"
)

type NameRequestRepository struct {
	db *gorm.DB
}

func NewNameRequestRepository(db *gorm.DB) *NameRequestRepository {
	return &NameRequestRepository{db: db}
}

func (r *NameRequestRepository) FindByRequestNumber(ctx context.Context, nameRequestNumber string) ([]domain.SourceRecord, error) {
	var rows []models.CompletedNR
	err := r.db.WithContext(ctx).
		Where("nr_num = ?", nameRequestNumber).
		Order("choice_number ASC").
		Order("name_instance_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]domain.SourceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toSourceRecord(row))
	}
	return records, nil
}

// Ping reports whether the database answers.
func (r *NameRequestRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func toSourceRecord(row models.CompletedNR) domain.SourceRecord {
	return domain.SourceRecord{
		NameRequestNumber: row.NrNum,
		ChoiceNumber:      row.ChoiceNumber,
		Name:              row.Name,
		CorpNumber:        row.CorpNum,
		NameInstanceID:    row.NameInstanceID,
		RequestID:         row.RequestID,
		SubmitCount:       row.SubmitCount,
		RequestTypeCode:   row.RequestTypeCd,
		NameID:            row.NameID,
		StartEventID:      row.StartEventID,
		NameStateCode:     row.NameStateTypeCd,
	}
}

var _ usecase.NameRequestRepository = (*NameRequestRepository)(nil)
