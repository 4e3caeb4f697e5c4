package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Scan.Delay)
	assert.Equal(t, 30*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 3, cfg.Dashboard.RecentLimit)
	assert.Equal(t, "demo@policydigest.app", cfg.DemoUser.Email)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_DRIVER", "Postgres")
	v.Set("SCAN_DELAY", "250ms")
	v.Set("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := fromViper(v)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Delay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestUnknownStoreDriverFallsBackToMemory(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_DRIVER", "mongo")

	assert.Equal(t, StoreMemory, fromViper(v).Store.Driver)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}
