package main

import (
	"testing"
	"time"

	"github.com/fjod/yofoo_cart/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCheckoutConfig(t *testing.T) {
	cfg := config.Config{
		BackendTimeout: 15 * time.Second,
		RequestTimeout: 30 * time.Second,
		Gateway: config.GatewayConfig{
			KeyID:       "rzp_test_key",
			DisplayName: "Yo Foo",
			ThemeColor:  "#F97316",
			Image:       "https://cdn.yofoo.test/logo.png",
		},
	}

	got := checkoutConfig(cfg)

	assert.Equal(t, 15*time.Second, got.Timeout)
	assert.Equal(t, "rzp_test_key", got.Gateway.KeyID)
	assert.Equal(t, "Yo Foo", got.Gateway.Name)
	assert.Equal(t, "#F97316", got.Gateway.ThemeColor)
	assert.Equal(t, "https://cdn.yofoo.test/logo.png", got.Gateway.Image)
}
