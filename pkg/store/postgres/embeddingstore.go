// Package postgres persists embedding records in a postgres database using
// bun. Metadata and sample values are stored as jsonb with numbers preserved
// so that analysis over a round-tripped record stays deterministic.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/uptrace/bun"

	"github.com/getsema/sema/pkg/models"
)

var _ models.EmbeddingStore = &EmbeddingStoreDAO{}

type EmbeddingStoreDAO struct {
	db *bun.DB
}

func NewEmbeddingStoreDAO(db *bun.DB) *EmbeddingStoreDAO {
	return &EmbeddingStoreDAO{db: db}
}

// PutEmbeddings upserts a batch of records keyed by their deterministic
// UUID. Metadata and samples of an existing record are replaced wholesale.
func (dao *EmbeddingStoreDAO) PutEmbeddings(
	ctx context.Context,
	records []models.EmbeddingRecord,
) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]EmbeddingSchema, len(records))
	for i, rec := range records {
		rows[i] = EmbeddingSchema{
			UUID:          rec.UUID,
			ContentID:     rec.ContentID,
			ColumnName:    rec.ColumnName,
			EmbeddingType: string(rec.EmbeddingType),
			Metadata:      rec.Metadata,
			SampleValues:  rec.SampleValues,
			CreatedAt:     rec.CreatedAt,
		}
	}

	_, err := dao.db.NewInsert().
		Model(&rows).
		On("CONFLICT (uuid) DO UPDATE").
		Set("metadata = EXCLUDED.metadata").
		Set("sample_values = EXCLUDED.sample_values").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put embeddings: %w", err)
	}
	return nil
}

// GetEmbeddings retrieves all records for a content identifier in insertion
// order, optionally filtered by embedding type. A missing content identifier
// yields an empty slice.
func (dao *EmbeddingStoreDAO) GetEmbeddings(
	ctx context.Context,
	contentID string,
	filter models.EmbeddingFilter,
) ([]models.EmbeddingRecord, error) {
	var rows []EmbeddingSchema
	query := dao.db.NewSelect().
		Model(&rows).
		Where("content_id = ?", contentID).
		Order("id ASC")
	if filter.EmbeddingType != "" {
		query = query.Where("embedding_type = ?", string(filter.EmbeddingType))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get embeddings: %w", err)
	}

	records := make([]models.EmbeddingRecord, len(rows))
	for i, row := range rows {
		records[i] = models.EmbeddingRecord{
			UUID:          row.UUID,
			ContentID:     row.ContentID,
			ColumnName:    row.ColumnName,
			EmbeddingType: models.EmbeddingType(row.EmbeddingType),
			Metadata:      row.Metadata,
			SampleValues:  row.SampleValues,
			CreatedAt:     row.CreatedAt,
		}
	}
	return records, nil
}

// OnStart waits for the database to accept connections, then creates the
// schema. Startup frequently races the database container, so connectivity
// is retried with backoff before giving up.
func (dao *EmbeddingStoreDAO) OnStart(ctx context.Context) error {
	pingRetryPolicy := retrypolicy.Builder[any]().
		WithBackoff(500*time.Millisecond, 10*time.Second).
		WithMaxRetries(6).
		Build()

	err := failsafe.Run(func() error {
		return dao.db.PingContext(ctx)
	}, pingRetryPolicy)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := CreateSchema(ctx, dao.db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (dao *EmbeddingStoreDAO) Close() error {
	return dao.db.Close()
}
