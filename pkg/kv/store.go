package kv

import (
	"context"
	"time"
)

// Store is a TTL-bound key/value index. It is derived, disposable state:
// the relational store stays the source of truth and losing the cache only
// degrades lookups.
type Store interface {
	// Get returns the value and whether the key exists. Expired keys are
	// reported as absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key prefixes used by the services.
const (
	PrefixSession             = "session:"
	PrefixResetToken          = "resetToken:"
	PrefixParentApprovalToken = "parentApprovalToken:"
)
