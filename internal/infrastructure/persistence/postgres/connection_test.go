package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPoolConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "db.internal"
	cfg.Password = "s3cret"
	cfg.MaxConns = 7

	pc, err := cfg.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, cfg.MaxConnLifetime, pc.MaxConnLifetime)
}

func TestConfigPoolConfig_URLWinsOverDiscreteFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "ignored.internal"
	cfg.URL = "postgres://app:pw@url-host:6543/hub?sslmode=require"
	cfg.MaxConns = 4

	pc, err := cfg.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, "url-host", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	// Pool tuning still comes from Config, not the URL.
	assert.Equal(t, int32(4), pc.MaxConns)
}

func TestConfigPoolConfig_RejectsMalformedURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "://not-a-url"

	_, err := cfg.PoolConfig()
	assert.Error(t, err)
}
