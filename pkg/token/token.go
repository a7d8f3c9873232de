// Package token generates the public codes and approval/reset tokens used
// across the authorization workflow. All randomness comes from crypto/rand;
// the non-random prefixes exist for debuggability, not secrecy.
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const (
	upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
)

func randomString(alphabet string, length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// NewPublicCode produces the shareable request code, e.g.
// AUTH-2026-123456-A7B3. The sequence part is derived from the clock and
// only exists to make codes sortable by eye; uniqueness comes from the
// random suffix plus the unique index on the column.
func NewPublicCode() (string, error) {
	now := time.Now()
	seq := now.UnixMilli() % 1_000_000
	random, err := randomString(upperAlnum, 4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AUTH-%d-%06d-%s", now.Year(), seq, random), nil
}

// NewParentApprovalToken produces a single-use parent link token,
// e.g. PA-m1x2c3d4-k9f0q2bw7n3z5.
func NewParentApprovalToken() (string, error) {
	random, err := randomString(lowerAlnum, 13)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PA-%s-%s", strconv.FormatInt(time.Now().UnixMilli(), 36), random), nil
}

// NewResetToken produces a password-reset token,
// e.g. RESET-1767225600000-a1b2c3d4e5.
func NewResetToken() (string, error) {
	random, err := randomString(lowerAlnum, 10)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RESET-%d-%s", time.Now().UnixMilli(), random), nil
}
