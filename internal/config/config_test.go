package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"todoapi/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("JWT_EXPIRE_TIME", "60")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":7701", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, time.Minute, cfg.JWTExpire)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "S3", cfg.StorageDir)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("APP_PORT", ":9000")

	cfg, err := config.Load([]string{"--port", ":9100", "--db-driver", "memory"})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DBDriver)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")

	path := filepath.Join(t.TempDir(), "todoapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt_algorithm: HS512\nstorage_dir: /tmp/images\n"), 0o600))

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, "/tmp/images", cfg.StorageDir)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--nope"})
	assert.Error(t, err)
}

func TestFromViper_Validation(t *testing.T) {
	v := viper.New()
	v.Set("JWT_ALGORITHM", "RS256")
	v.Set("JWT_EXPIRE_TIME", 0)
	v.Set("DB_DRIVER", "oracle")
	v.Set("STORAGE_DRIVER", "s3")
	v.Set("MAX_UPLOAD_BYTES", 1)

	_, err := config.FromViper(v)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET must be set")
	assert.Contains(t, msg, `JWT_ALGORITHM "RS256" is not supported`)
	assert.Contains(t, msg, "JWT_EXPIRE_TIME must be positive")
	assert.Contains(t, msg, `DB_DRIVER "oracle" is not supported`)
	assert.Contains(t, msg, "S3_BUCKET must be set")
}
