package models

import "time"

// KeyMaterial is a named symmetric key record. Records are append-only: once
// provisioned under a label, neither the label nor the key bytes ever change.
// Only UsageCount moves, and nothing depends on its exact value.
type KeyMaterial struct {
	ID       string
	KeyLabel string
	KeyValue []byte

	// IV is a 16-byte value stored on the record itself. It is metadata only;
	// each encrypted member field carries its own independent IV.
	IV []byte

	KeySizeBits int
	UsageCount  int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
