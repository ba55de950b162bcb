// Package services contains the server-side business logic: key provisioning
// and the member directory (registration, authentication, profile reads).
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yuwenwww/membervault/internal/common"
	"github.com/yuwenwww/membervault/internal/server/models"
	"github.com/yuwenwww/membervault/internal/server/repositories/repomanager"
)

// metadataIVSize is the size of the inert IV stored on the key record itself.
// PII fields never use it; each encryption draws its own IV.
const metadataIVSize = 16

// KeyService provisions and resolves labelled symmetric keys.
type KeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewKeyService constructs a KeyService over the given pool and repositories.
func NewKeyService(db *sql.DB, m repomanager.RepositoryManager) *KeyService {
	return &KeyService{db: db, repomanager: m}
}

// EnsureKey returns the key record stored under label, generating and
// persisting one if none exists. Idempotent: an existing record is returned
// unchanged. Two callers racing to provision the same label converge on a
// single record; the loser of the insert race re-reads the winner's row.
// Nothing is persisted unless the record is fully populated.
func (s *KeyService) EnsureKey(ctx context.Context, label string, sizeBits int) (*models.KeyMaterial, error) {
	repo := s.repomanager.Keys(s.db)

	km, err := repo.GetByLabel(ctx, label)
	if err == nil {
		return km, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up key %q: %w", label, err)
	}

	if sizeBits <= 0 || sizeBits%8 != 0 {
		return nil, fmt.Errorf("invalid key size %d bits", sizeBits)
	}

	keyValue := make([]byte, sizeBits/8)
	if _, err := rand.Read(keyValue); err != nil {
		return nil, fmt.Errorf("error generating key material: %w", err)
	}
	iv := make([]byte, metadataIVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("error generating metadata iv: %w", err)
	}

	km = &models.KeyMaterial{
		KeyLabel:    label,
		KeyValue:    keyValue,
		IV:          iv,
		KeySizeBits: sizeBits,
		UsageCount:  0,
	}

	saved, err := repo.Save(ctx, km)
	if err != nil {
		if errors.Is(err, common.ErrorKeyAlreadyExists) {
			// lost the provisioning race; the stored record wins
			return s.getExisting(ctx, label)
		}
		return nil, fmt.Errorf("error saving key %q: %w", label, err)
	}

	return saved, nil
}

// ResolveKey returns the key stored under label. A missing record is
// ErrorKeyNotFound: ciphertext referencing the label can no longer be
// decrypted, which is store corruption, not a caller mistake.
func (s *KeyService) ResolveKey(ctx context.Context, label string) (*models.KeyMaterial, error) {
	return s.getExisting(ctx, label)
}

func (s *KeyService) getExisting(ctx context.Context, label string) (*models.KeyMaterial, error) {
	km, err := s.repomanager.Keys(s.db).GetByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: label %q", common.ErrorKeyNotFound, label)
		}
		return nil, fmt.Errorf("error looking up key %q: %w", label, err)
	}
	return km, nil
}

// IncrementUsage bumps the usage counter on the key record. Best effort:
// failures are reported but callers may ignore them, nothing depends on the
// counter's value.
func (s *KeyService) IncrementUsage(ctx context.Context, label string, n int64) error {
	if n <= 0 {
		return nil
	}
	return s.repomanager.Keys(s.db).IncrementUsage(ctx, label, n)
}
