package id

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPublicID(t *testing.T) {
	gen := NewGenerator()
	for range 100 {
		publicID := gen.NewPublicID()
		assert.Len(t, publicID, 12)
		for _, r := range publicID {
			assert.Contains(t, alphabet, string(r))
		}
	}
}

func TestNewSku(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		sequence int
	}{
		{name: "single digit sequence is zero padded", prefix: "SOF", sequence: 7},
		{name: "four digit sequence is kept as is", prefix: "TBL", sequence: 9999},
		{name: "zero sequence", prefix: "CHR", sequence: 0},
	}
	gen := NewGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku := gen.NewSku(tt.prefix, tt.sequence)
			parts := strings.Split(sku, "-")
			assert.Len(t, parts, 3)
			assert.Equal(t, tt.prefix, parts[0])
			assert.Len(t, parts[1], 4)
			assert.Equal(t, fmt.Sprintf("%04d", tt.sequence), parts[2])
		})
	}
}

func TestNewOrderCode(t *testing.T) {
	gen := NewGenerator()
	date := time.Date(2025, time.March, 14, 23, 59, 0, 0, time.Local)

	code := gen.NewOrderCode(date)
	parts := strings.Split(code, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "MOA", parts[0])
	assert.Equal(t, "20250314", parts[1])
	assert.Len(t, parts[2], 4)
}

func TestNewPublicIDUniqueness(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]struct{}, 10000)
	for range 10000 {
		publicID := gen.NewPublicID()
		_, dup := seen[publicID]
		assert.Falsef(t, dup, "public id %s drawn twice", publicID)
		seen[publicID] = struct{}{}
	}
}

func TestNewOrderCodeUniqueness(t *testing.T) {
	gen := NewGenerator()
	date := time.Now()

	// The 4-char suffix spans 36^4 draws per day, so a 10k sample is expected
	// to hold around 30 birthday collisions. The check is that duplicates stay
	// rare, not absent; storage enforces real uniqueness.
	duplicates := 0
	seen := make(map[string]struct{}, 10000)
	for range 10000 {
		code := gen.NewOrderCode(date)
		if _, dup := seen[code]; dup {
			duplicates++
		}
		seen[code] = struct{}{}
	}
	assert.Less(t, duplicates, 150)
}
