package ports

import (
	"context"

	"github.com/bnema/nodepay-cli/internal/domain"
)

type CredentialSource interface {
	Load(ctx context.Context) ([]domain.Credential, error)
}
