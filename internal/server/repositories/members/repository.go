package members

import (
	"context"

	"github.com/yuwenwww/membervault/internal/server/models"
)

// Repository persists Member records. No update or delete flow exists: a
// record is written once at registration and only ever read after that.
type Repository interface {
	// Create inserts a new member and returns it with assigned timestamps.
	// A duplicate username fails with common.ErrorDuplicateUsername.
	Create(ctx context.Context, m *models.Member) (*models.Member, error)

	// GetByUsername returns the member with the given username, or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.Member, error)

	// GetByID returns the member with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Member, error)
}
