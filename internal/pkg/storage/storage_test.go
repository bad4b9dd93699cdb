package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver(t *testing.T) {
	ctx := context.Background()

	_, err := NewFromDriver(ctx, "ftp", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(ctx, DriverMinIO, FactoryOptions{})
	assert.Error(t, err)

	st, err := NewFromDriver(ctx, " MinIO ", FactoryOptions{MinIO: MinIOOptions{Endpoint: "localhost:9000"}})
	require.NoError(t, err)
	assert.IsType(t, &MinIO{}, st)
	assert.NoError(t, st.Close())

	st, err = NewFromDriver(ctx, DriverS3, FactoryOptions{S3: S3Options{
		Endpoint:     "http://localhost:9000",
		AccessKey:    "key",
		SecretKey:    "secret",
		UsePathStyle: true,
	}})
	require.NoError(t, err)
	assert.IsType(t, &S3{}, st)
}
