package database

import (
	"context"
	"testing"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis(t *testing.T) {
	t.Run("empty address", func(t *testing.T) {
		_, err := NewRedis(config.RedisConfig{})
		assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
	})

	t.Run("ping", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rc, err := NewRedis(config.RedisConfig{Address: mr.Addr(), PoolSize: 2})
		require.NoError(t, err)
		defer rc.Close()

		require.NoError(t, rc.Ping(context.Background()))

		mr.Close()
		err = rc.Ping(context.Background())
		assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
	})
}
