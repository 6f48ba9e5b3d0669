package ports

import (
	"context"

	"github.com/bnema/nodepay-cli/internal/domain"
)

// Gateway issues authenticated calls to the platform API through the proxy it
// was built for. Implementations never retry.
type Gateway interface {
	// Call posts the payload and requires a valid body: JSON with a "code"
	// field that is not negative.
	Call(ctx context.Context, req domain.APIRequest) (domain.APIResponse, error)
	// Post posts the payload and only classifies the HTTP status.
	Post(ctx context.Context, req domain.APIRequest) (domain.APIResponse, error)
}

// GatewayFactory builds the gateway owned by one account.
type GatewayFactory func(proxy string) (Gateway, error)
