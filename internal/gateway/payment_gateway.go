package gateway

import (
	"context"
	"math/rand"
	"sync"
)

// PaymentGateway is the external settlement collaborator. The real
// gateway's logic is out of scope; this core only consumes its boolean
// verdict for a transaction.
type PaymentGateway interface {
	// Settle returns whether the gateway settled the transaction
	Settle(ctx context.Context, transactionID string) (bool, error)
}

// MockGateway simulates a payment gateway with a configurable success
// rate. Injected rather than called inline so confirmation logic stays
// testable independently of gateway behavior.
type MockGateway struct {
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// MockGatewayConfig contains configuration for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate in [0,1]; 0.5 when unset
	SuccessRate float64
	// Seed makes the verdict sequence reproducible; 0 leaves it randomized
	Seed int64
}

// NewMockGateway creates a mock gateway
func NewMockGateway(cfg *MockGatewayConfig) *MockGateway {
	rate := 0.5
	var seed int64
	if cfg != nil {
		if cfg.SuccessRate > 0 {
			rate = cfg.SuccessRate
		}
		seed = cfg.Seed
	}

	src := rand.NewSource(seed)
	if seed == 0 {
		src = rand.NewSource(rand.Int63())
	}

	return &MockGateway{
		successRate: rate,
		rng:         rand.New(src),
	}
}

// Settle returns a randomized verdict at the configured success rate
func (g *MockGateway) Settle(ctx context.Context, transactionID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64() < g.successRate, nil
}

// StaticGateway always returns the same verdict. Used in tests.
type StaticGateway struct {
	Result bool
}

// Settle returns the fixed verdict
func (g *StaticGateway) Settle(ctx context.Context, transactionID string) (bool, error) {
	return g.Result, nil
}

// Ensure implementations satisfy PaymentGateway
var (
	_ PaymentGateway = (*MockGateway)(nil)
	_ PaymentGateway = (*StaticGateway)(nil)
)
