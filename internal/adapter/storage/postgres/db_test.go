package postgres

import (
	"errors"
	"testing"
	"time"

	"vending-machine-api/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "vend",
		Password:        "secret",
		DBName:          "vending",
		SSLMode:         "disable",
		MaxConns:        20,
		MinConns:        5,
		ConnMaxLifetime: 30 * time.Minute,
	}

	poolCfg, err := ParsePoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(20), poolCfg.MaxConns)
	assert.Equal(t, int32(5), poolCfg.MinConns)
	assert.Equal(t, 30*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "vending", poolCfg.ConnConfig.Database)
	assert.Equal(t, uint16(5432), poolCfg.ConnConfig.Port)
}

func TestParsePoolConfig_Invalid(t *testing.T) {
	_, err := ParsePoolConfig(config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "bogus"})
	assert.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(transientErr{}))
	assert.True(t, isTransient(&pgconn.ConnectError{}))
	assert.False(t, isTransient(errors.New("syntax error")))
	assert.False(t, isTransient(nil))
}
