package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yuwenwww/membervault/internal/common"
	"github.com/yuwenwww/membervault/internal/cryptox"
	"github.com/yuwenwww/membervault/internal/dbx"
	"github.com/yuwenwww/membervault/internal/server/models"
	"github.com/yuwenwww/membervault/internal/server/repositories/repomanager"
)

// RegisterParams carries a registration request. Email and PhoneNumber are
// optional; when present they are encrypted under the key resolved through
// PIIKeyLabel before anything touches the database.
type RegisterParams struct {
	Username    string
	Password    string
	Email       *string
	PhoneNumber *string
	PIIKeyLabel string
}

// MemberService is the member directory. It owns username uniqueness and
// orchestrates field-level encryption on write and decryption on read.
type MemberService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	keys           *KeyService
	cipher         *cryptox.Cipher
	bcryptCost     int
	piiKeySizeBits int

	// dummyHash is compared against when a username does not exist, so the
	// unknown-user and wrong-password paths cost one bcrypt verify each.
	dummyHash string
}

// NewMemberService constructs the directory. The cipher is passed in
// explicitly; there is no package-level crypto state.
func NewMemberService(db *sql.DB, m repomanager.RepositoryManager, ks *KeyService, cipher *cryptox.Cipher, bcryptCost, piiKeySizeBits int) (*MemberService, error) {
	dummy, err := cryptox.HashPassword("membervault.dummy", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}
	return &MemberService{
		db:             db,
		repomanager:    m,
		keys:           ks,
		cipher:         cipher,
		bcryptCost:     bcryptCost,
		piiKeySizeBits: piiKeySizeBits,
		dummyHash:      dummy,
	}, nil
}

// Register creates a new member. The username check runs before any
// cryptographic work. Either the full record, with every present PII field
// encrypted, is stored in one transaction, or nothing is stored.
func (s *MemberService) Register(ctx context.Context, params RegisterParams) (*models.Member, error) {
	repo := s.repomanager.Members(s.db)

	_, err := repo.GetByUsername(ctx, params.Username)
	if err == nil {
		return nil, common.ErrorDuplicateUsername
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	hash, err := cryptox.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	member := models.Member{Username: params.Username, PasswordHash: hash}

	var encrypted int64
	if params.Email != nil || params.PhoneNumber != nil {
		key, err := s.keys.EnsureKey(ctx, params.PIIKeyLabel, s.piiKeySizeBits)
		if err != nil {
			return nil, err
		}
		if len(key.KeyValue)*8 != key.KeySizeBits {
			return nil, fmt.Errorf("%w: key %q material does not match its declared size", common.ErrorEncryptionFailed, key.KeyLabel)
		}

		var emailField, phoneField *models.EncryptedField
		if params.Email != nil {
			if emailField, err = s.encryptField(*params.Email, key); err != nil {
				return nil, err
			}
			encrypted++
		}
		if params.PhoneNumber != nil {
			if phoneField, err = s.encryptField(*params.PhoneNumber, key); err != nil {
				return nil, err
			}
			encrypted++
		}
		member = member.WithEncryptedPII(key.KeyLabel, emailField, phoneField)
	}

	var created *models.Member
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var txErr error
		created, txErr = s.repomanager.Members(tx).Create(ctx, &member)
		return txErr
	}); err != nil {
		if errors.Is(err, common.ErrorDuplicateUsername) {
			return nil, common.ErrorDuplicateUsername
		}
		return nil, fmt.Errorf("error creating member: %w", err)
	}

	// usage accounting is best effort and stays outside the atomic boundary
	if encrypted > 0 {
		_ = s.keys.IncrementUsage(ctx, member.EncryptionKeyLabel, encrypted)
	}

	return created, nil
}

func (s *MemberService) encryptField(plaintext string, key *models.KeyMaterial) (*models.EncryptedField, error) {
	ciphertext, iv, err := s.cipher.Encrypt([]byte(plaintext), key.KeyValue)
	if err != nil {
		return nil, err
	}
	return &models.EncryptedField{Ciphertext: ciphertext, IV: iv}, nil
}

// Authenticate verifies username/password. Both an unknown username and a
// password mismatch return (nil, nil); the unknown-user path still runs a
// bcrypt verify so the two cases are not distinguishable by timing.
func (s *MemberService) Authenticate(ctx context.Context, username, rawPassword string) (*models.Member, error) {
	repo := s.repomanager.Members(s.db)

	member, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyPassword(rawPassword, s.dummyHash)
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up member: %w", err)
	}

	if !cryptox.VerifyPassword(rawPassword, member.PasswordHash) {
		return nil, nil
	}

	return member, nil
}

// GetProfile loads the member and returns a decrypted in-memory view. The
// stored record is never rewritten with plaintext. A missing key record for
// the stored label is ErrorKeyNotFound; a failed decryption fails the read
// rather than returning corrupt plaintext.
func (s *MemberService) GetProfile(ctx context.Context, id string) (*models.MemberProfile, error) {
	member, err := s.repomanager.Members(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorMemberNotFound
		}
		return nil, fmt.Errorf("error looking up member: %w", err)
	}

	profile := &models.MemberProfile{
		ID:        member.ID,
		Username:  member.Username,
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}

	if !member.HasPII() {
		return profile, nil
	}

	key, err := s.keys.ResolveKey(ctx, member.EncryptionKeyLabel)
	if err != nil {
		return nil, err
	}

	if member.Email != nil {
		plaintext, err := s.cipher.Decrypt(member.Email, key.KeyValue, member.EmailIV)
		if err != nil {
			return nil, err
		}
		profile.Email = string(plaintext)
	}
	if member.PhoneNumber != nil {
		plaintext, err := s.cipher.Decrypt(member.PhoneNumber, key.KeyValue, member.PhoneIV)
		if err != nil {
			return nil, err
		}
		profile.PhoneNumber = string(plaintext)
	}

	return profile, nil
}
