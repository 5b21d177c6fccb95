// Package id mints the short public-facing codes the storefront hands out:
// entity IDs, SKUs and order codes. Codes are uniform random draws over a
// fixed alphabet, not cryptographic tokens; uniqueness is probabilistic and
// the storage layer's unique constraints remain the authority.
package id

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Lowercase alphanumerics only, so codes survive URLs, filenames and
// case-insensitive lookups unchanged.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const (
	publicIDLength = 12
	suffixLength   = 4

	orderCodePrefix = "MOA"
)

type Generator struct{}

func NewGenerator() Generator {
	return Generator{}
}

// NewPublicID returns a 12-character identifier for external-facing entity
// references. With a 36-symbol alphabet the space is 36^12; callers still
// retry on a uniqueness violation from storage.
func (Generator) NewPublicID() string {
	return randomString(publicIDLength)
}

// NewSku builds a SKU of the form {PREFIX}-{4-char random}-{4-digit sequence}.
// The prefix is caller-supplied and not sanitized here.
func (Generator) NewSku(categoryPrefix string, sequenceNumber int) string {
	return fmt.Sprintf("%s-%s-%04d", categoryPrefix, randomString(suffixLength), sequenceNumber)
}

// NewOrderCode builds a code of the form MOA-{YYYYMMDD}-{4-char random}. The
// date is formatted in the calendar of the supplied time; callers needing
// cross-timezone consistency pass a pre-normalized date.
func (Generator) NewOrderCode(date time.Time) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		orderCodePrefix,
		date.Format("20060102"),
		randomString(suffixLength),
	)
}

func randomString(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for range n {
		sb.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return sb.String()
}
