package translate

import (
	"context"

	"github.com/heartmarshall/vocabscan/internal/domain"
)

// Stub is the translator used when no translation provider is configured.
// Every call fails with domain.ErrUnavailable, so backfill falls back to the
// English definition tagged with the fallback marker.
type Stub struct{}

// NewStub creates a new no-op translation provider.
func NewStub() *Stub { return &Stub{} }

// Translate always returns domain.ErrUnavailable.
func (s *Stub) Translate(ctx context.Context, text, source, target string) (string, error) {
	return "", domain.ErrUnavailable
}
