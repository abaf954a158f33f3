package engine

import "github.com/google/uuid"

// RunTokenGenerator generates the token stamped on each aggregation
// run. Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests and golden files).
type RunTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered RFC 4122 UUIDs so run tokens
// in logs sort chronologically.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator always returns the same token. Test use only.
type FixedGenerator struct {
	Token string
}

// Generate returns the fixed token.
func (g FixedGenerator) Generate() string {
	return g.Token
}
