package config

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func init() { log.SetOutput(io.Discard) }

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "STORE_DRIVER", "CART_TAX_RATE", "CHECKOUT_TAX_RATE", "LOW_STOCK_THRESHOLD",
		"PAYMENT_TIMEOUT", "PUBLIC_BASE_URL", "SMTP_USERNAME", "DEFAULT_FROM_EMAIL", "ADMIN_EMAIL", "PAYMENT_CURRENCY"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "0.1", cfg.CartTaxRate.String())
	assert.Equal(t, "0.08", cfg.CheckoutTaxRate.String())
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 10*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, "usd", cfg.PaymentCurrency)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.False(t, cfg.Production())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_TAX_RATE", "0.21")
	t.Setenv("CHECKOUT_TAX_RATE", "not-a-number")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example/")
	t.Setenv("PAYMENT_CURRENCY", "EUR")
	t.Setenv("SMTP_USERNAME", "shop@example.com")
	t.Setenv("DEFAULT_FROM_EMAIL", "")
	t.Setenv("ADMIN_EMAIL", "")
	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, "0.21", cfg.CartTaxRate.String())
	assert.Equal(t, "0.08", cfg.CheckoutTaxRate.String())
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, "https://shop.example", cfg.PublicBaseURL)
	assert.Equal(t, "eur", cfg.PaymentCurrency)
	assert.Equal(t, "shop@example.com", cfg.DefaultFromEmail)
	assert.Equal(t, "shop@example.com", cfg.AdminEmail)
}
