package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CART_STORE", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("AUTH_TRUST_GATEWAY_HEADERS", "")
	t.Setenv("CLEAR_CART_ON_ORDER", "")

	cfg := Load()

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, CartStoreRedis, cfg.Cart.Store)
	assert.Equal(t, 168*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, AuthModeRemote, cfg.Auth.Mode)
	assert.False(t, cfg.Auth.TrustGatewayHeaders)
	assert.False(t, cfg.Cart.ClearOnOrder)
	require.NoError(t, cfg.Validate())
}

func TestHeaderAuthNeedsExplicitTrust(t *testing.T) {
	t.Setenv("AUTH_MODE", "header")
	t.Setenv("AUTH_TRUST_GATEWAY_HEADERS", "")

	cfg := Load()
	assert.Equal(t, AuthModeHeader, cfg.Auth.Mode)
	assert.Error(t, cfg.Validate())

	t.Setenv("AUTH_TRUST_GATEWAY_HEADERS", "true")
	cfg = Load()
	assert.True(t, cfg.Auth.TrustGatewayHeaders)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("CART_STORE", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("CATALOG_BREAKER_FAILURE_RATIO", "0.25")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, CartStoreMemory, cfg.Cart.Store)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 0.25, cfg.Catalog.BreakerFailureRatio)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidateRejectsUnknownSelections(t *testing.T) {
	cfg := Load()

	cfg.Store.Driver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Store.Driver = StoreDriverPostgres
	cfg.Cart.Store = "disk"
	assert.Error(t, cfg.Validate())

	cfg.Cart.Store = CartStoreMemory
	cfg.Auth.Mode = AuthModeRemote
	cfg.Auth.ServiceURL = ""
	assert.Error(t, cfg.Validate())
}
