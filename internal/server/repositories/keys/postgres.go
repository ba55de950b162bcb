// Package keys provides the PostgreSQL-backed key-material store.
package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuwenwww/membervault/internal/common"
	"github.com/yuwenwww/membervault/internal/dbx"
	"github.com/yuwenwww/membervault/internal/server/models"
)

// PostgresRepository implements key storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByLabel(ctx context.Context, label string) (*models.KeyMaterial, error) {
	query :=
		`SELECT id, key_label, key_value, iv, key_size, usage_count, created_at, updated_at FROM key_material
		 WHERE key_label = $1
		 `

	km := &models.KeyMaterial{}
	err := r.db.QueryRowContext(ctx, query, label).Scan(
		&km.ID, &km.KeyLabel, &km.KeyValue, &km.IV, &km.KeySizeBits, &km.UsageCount, &km.CreatedAt, &km.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return km, nil
}

func (r *PostgresRepository) Save(ctx context.Context, km *models.KeyMaterial) (*models.KeyMaterial, error) {
	query :=
		`INSERT INTO key_material (id, key_label, key_value, iv, key_size, usage_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `

	if km.ID == "" {
		km.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, query,
		km.ID, km.KeyLabel, km.KeyValue, km.IV, km.KeySizeBits, km.UsageCount).
		Scan(&km.CreatedAt, &km.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorKeyAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return km, nil
}

func (r *PostgresRepository) IncrementUsage(ctx context.Context, label string, n int64) error {
	query :=
		`UPDATE key_material SET usage_count = usage_count + $2, updated_at = now()
		 WHERE key_label = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, label, n); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
