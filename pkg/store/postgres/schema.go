package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/models"
)

var log = internal.GetLogger()

type EmbeddingSchema struct {
	bun.BaseModel `bun:"table:embedding,alias:e"`

	// UUID is content-addressed, so re-running an enrichment upserts
	// instead of accumulating duplicate records.
	UUID uuid.UUID `bun:",pk,type:uuid"`
	// ID is used only for sorting / slicing purposes as we can't sort by
	// CreatedAt for records created simultaneously
	ID            int64                  `bun:",autoincrement"`
	ContentID     string                 `bun:",notnull"`
	ColumnName    string                 `bun:",nullzero"`
	EmbeddingType string                 `bun:",notnull"`
	Metadata      map[string]interface{} `bun:"type:jsonb,nullzero,json_use_number"`
	SampleValues  []interface{}          `bun:"type:jsonb,nullzero,json_use_number"`
	CreatedAt     time.Time              `bun:"type:timestamptz,notnull,default:current_timestamp"`
	UpdatedAt     time.Time              `bun:"type:timestamptz,nullzero,default:current_timestamp"`
}

var _ bun.BeforeAppendModelHook = (*EmbeddingSchema)(nil)

func (s *EmbeddingSchema) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.UpdateQuery); ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

// CreateSchema creates the embedding table and its content_id index if they
// do not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	log.Info("creating embedding table if it does not exist")
	_, err := db.NewCreateTable().
		Model((*EmbeddingSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		// bun still trying to create indexes despite IfNotExists flag
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("error creating embedding table: %w", err)
		}
	}

	_, err = db.NewCreateIndex().
		Model((*EmbeddingSchema)(nil)).
		Index("embedding_content_id_idx").
		IfNotExists().
		Column("content_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("error creating embedding_content_id_idx: %w", err)
	}

	return nil
}

// NewPostgresConn creates a new bun.DB connection to a postgres database using the provided DSN.
// The connection is configured to pool connections based on the number of PROCs available.
func NewPostgresConn(appState *models.AppState) (*bun.DB, error) {
	maxOpenConns := 4 * runtime.GOMAXPROCS(0)

	sqldb := sql.OpenDB(
		pgdriver.NewConnector(
			pgdriver.WithDSN(appState.Config.Store.Postgres.DSN),
			pgdriver.WithReadTimeout(1*time.Minute),
		),
	)
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxOpenConns)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
