package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tokenPrefix = "engg-"

// CorrelationToken tags an ingested attachment so it can be found again
// after the ingest call returns.
type CorrelationToken struct {
	ID uuid.UUID
}

// NewCorrelationToken derives a token from the source URL, the picture
// description, the current time and a random component. Two calls never
// yield the same token, even for identical inputs.
func NewCorrelationToken(url, description string, now time.Time) (CorrelationToken, error) {
	nonce, err := uuid.NewRandom()
	if err != nil {
		return CorrelationToken{}, fmt.Errorf("generating token nonce: %w", err)
	}
	name := strings.Join([]string{
		"attachment-hash",
		url,
		description,
		now.UTC().Format(time.RFC3339Nano),
		nonce.String(),
	}, "\x00")
	return CorrelationToken{ID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))}, nil
}

// ParseCorrelationToken reverses String.
func ParseCorrelationToken(s string) (CorrelationToken, error) {
	if !strings.HasPrefix(s, tokenPrefix) {
		return CorrelationToken{}, fmt.Errorf("invalid correlation token %q", s)
	}
	id, err := uuid.Parse(strings.TrimPrefix(s, tokenPrefix))
	if err != nil {
		return CorrelationToken{}, fmt.Errorf("invalid correlation token %q: %w", s, err)
	}
	return CorrelationToken{ID: id}, nil
}

// String returns the persisted form of the token.
func (t CorrelationToken) String() string {
	return tokenPrefix + t.ID.String()
}

// Short returns the first eight hex digits, used to keep upload keys unique.
func (t CorrelationToken) Short() string {
	return t.ID.String()[:8]
}

// IsZero reports whether the token was never set.
func (t CorrelationToken) IsZero() bool {
	return t.ID == uuid.Nil
}
