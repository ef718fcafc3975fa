package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.Seed)
	assert.Equal(t, "admin", cfg.Storage.AdminUsername)
	assert.Equal(t, "admin123", cfg.Storage.AdminPassword)
	assert.Equal(t, 480, cfg.JWT.Expiration)
	assert.Equal(t, 2*time.Second, cfg.Engine.LockTimeout)
	assert.Equal(t, 3, cfg.Engine.MaxRetries)
	assert.Equal(t, BrokerNone, cfg.Events.Broker)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_LeeValores(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("ENGINE_LOCK_TIMEOUT_MS", "150")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("EVENTS_BROKER", "kafka")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("STORAGE_SEED", "false")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 150*time.Millisecond, cfg.Engine.LockTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Storage.Seed)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "sqlite")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "inv", Password: "p@ss/word", DBName: "inventory", SSLMode: "disable"}
	assert.Equal(t, "postgres://inv:p%40ss%2Fword@db:5432/inventory?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
