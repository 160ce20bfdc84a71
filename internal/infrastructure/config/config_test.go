package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 15*time.Second, cfg.OperationTimeout)
	assert.Equal(t, 20, cfg.LoginRatePerMinute)
	assert.True(t, cfg.Mongo.Transactions)
	assert.Equal(t, "events", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, 4, cfg.Uploads.CleanupWorkers)
	assert.Empty(t, cfg.S3.Bucket)
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), map[string]string{
		"JWT_SECRET":         "s3cret",
		"ENV":                "production",
		"MONGO_TRANSACTIONS": "false",
		"S3_BUCKET":          "images",
		"S3_ENDPOINT":        "http://minio:9000",
		"OPERATION_TIMEOUT":  "3s",
	})
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.Mongo.Transactions)
	assert.Equal(t, "images", cfg.S3.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.S3.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.OperationTimeout)
}

func TestLoadWith_RequiresJWTSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), map[string]string{})
	assert.Error(t, err)
}
