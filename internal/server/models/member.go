package models

import "time"

// Member is a stored identity record. Email and PhoneNumber hold ciphertext,
// never plaintext; the matching IV is present exactly when the ciphertext is.
// EncryptionKeyLabel names the key_material record that produced the
// ciphertexts and is empty iff the record carries no PII.
type Member struct {
	ID           string
	Username     string
	PasswordHash string

	Email   []byte
	EmailIV []byte

	PhoneNumber []byte
	PhoneIV     []byte

	EncryptionKeyLabel string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EncryptedField pairs one field's ciphertext with the IV that produced it.
type EncryptedField struct {
	Ciphertext []byte
	IV         []byte
}

// WithEncryptedPII returns a copy of m carrying the given ciphertext fields
// under keyLabel. The receiver is not modified; encrypted state is a new
// value, not a mutation.
func (m Member) WithEncryptedPII(keyLabel string, email, phone *EncryptedField) Member {
	if email != nil {
		m.Email = email.Ciphertext
		m.EmailIV = email.IV
	}
	if phone != nil {
		m.PhoneNumber = phone.Ciphertext
		m.PhoneIV = phone.IV
	}
	if email != nil || phone != nil {
		m.EncryptionKeyLabel = keyLabel
	}
	return m
}

// HasPII reports whether the record carries any encrypted fields.
func (m Member) HasPII() bool {
	return m.EncryptionKeyLabel != ""
}

// MemberProfile is the decrypted read view of a Member. It exists only in
// memory; the stored record keeps its ciphertext.
type MemberProfile struct {
	ID          string
	Username    string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
