package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
)

// Source loads credentials from primary and falls back to the secondary
// source only when primary holds no accounts. Any other primary failure is
// returned as is.
type Source struct {
	primary  ports.CredentialSource
	fallback ports.CredentialSource
}

var _ ports.CredentialSource = (*Source)(nil)

var (
	errNilPrimarySource  = errors.New("primary credential source is nil")
	errNilFallbackSource = errors.New("fallback credential source is nil")
)

func NewSource(primary ports.CredentialSource, fallback ports.CredentialSource) *Source {
	source, err := NewSourceChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return source
}

func NewSourceChecked(primary ports.CredentialSource, fallback ports.CredentialSource) (*Source, error) {
	if primary == nil {
		return nil, errNilPrimarySource
	}
	if fallback == nil {
		return nil, errNilFallbackSource
	}

	return &Source{primary: primary, fallback: fallback}, nil
}

func (s *Source) Load(ctx context.Context) ([]domain.Credential, error) {
	credentials, err := s.primary.Load(ctx)
	if err == nil && len(credentials) > 0 {
		return credentials, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNoCredentials) {
		return nil, fmt.Errorf("primary source load failed: %w", err)
	}

	return s.fallback.Load(ctx)
}
