package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockGateway_SeededSequenceIsReproducible(t *testing.T) {
	first := NewMockGateway(&MockGatewayConfig{SuccessRate: 0.5, Seed: 42})
	second := NewMockGateway(&MockGatewayConfig{SuccessRate: 0.5, Seed: 42})

	for i := 0; i < 20; i++ {
		a, err := first.Settle(context.Background(), "TXN_x")
		assert.NoError(t, err)
		b, err := second.Settle(context.Background(), "TXN_x")
		assert.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestMockGateway_ExtremeRates(t *testing.T) {
	alwaysSucceed := NewMockGateway(&MockGatewayConfig{SuccessRate: 1.0, Seed: 1})
	for i := 0; i < 50; i++ {
		ok, err := alwaysSucceed.Settle(context.Background(), "TXN_x")
		assert.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestStaticGateway(t *testing.T) {
	ok, err := (&StaticGateway{Result: true}).Settle(context.Background(), "TXN_x")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = (&StaticGateway{Result: false}).Settle(context.Background(), "TXN_x")
	assert.NoError(t, err)
	assert.False(t, ok)
}
