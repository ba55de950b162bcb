// Package members provides the PostgreSQL-backed member directory store.
package members

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

// PostgresRepository implements member storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const memberColumns = `id, username, password_hash, email, email_iv, phone_number, phone_iv, encryption_key_label, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	query :=
		`INSERT INTO members (id, username, password_hash, email, email_iv, phone_number, phone_iv, encryption_key_label)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at
		 `

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	keyLabel := sql.NullString{String: m.EncryptionKeyLabel, Valid: m.EncryptionKeyLabel != ""}

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.Username, m.PasswordHash, m.Email, m.EmailIV, m.PhoneNumber, m.PhoneIV, keyLabel).
		Scan(&m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorDuplicateUsername
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Member, error) {
	m := &models.Member{}
	var keyLabel sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&m.ID, &m.Username, &m.PasswordHash,
		&m.Email, &m.EmailIV, &m.PhoneNumber, &m.PhoneIV,
		&keyLabel, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	m.EncryptionKeyLabel = keyLabel.String
	return m, nil
}
