package keys

import (
	"context"

	"github.com/yuwenwww/membervault/internal/server/models"
)

// Repository persists KeyMaterial records. Key records are append-only: there
// is no update or delete, only Save, lookup, and the usage counter bump.
type Repository interface {
	// GetByLabel returns the key record stored under label, or
	// common.ErrorNotFound if no record exists.
	GetByLabel(ctx context.Context, label string) (*models.KeyMaterial, error)

	// Save inserts a fully populated key record and returns it with its
	// assigned id and timestamps. A concurrent save for the same label fails
	// with common.ErrorKeyAlreadyExists; the label uniqueness constraint in
	// the database is the source of truth.
	Save(ctx context.Context, km *models.KeyMaterial) (*models.KeyMaterial, error)

	// IncrementUsage bumps the record's usage counter by n. Best effort: the
	// counter tracks how many encryption operations used the key, nothing
	// depends on its exact value.
	IncrementUsage(ctx context.Context, label string, n int64) error
}
