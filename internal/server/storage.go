package server

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fileshare/internal/server/config"
	"github.com/dmitrijs2005/fileshare/internal/server/repositories/users"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenUserRepository builds the user store selected by c.StorageType. The
// returned Closer releases database handles; it is a no-op for the file and
// s3 backends.
func OpenUserRepository(ctx context.Context, c *config.Config) (users.Repository, io.Closer, error) {
	switch c.StorageType {
	case config.StorageFile:
		return users.NewFileRepository(c.UsersFile), nopCloser{}, nil

	case config.StorageS3:
		client, err := users.NewS3Client(ctx, users.S3Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s3 client init error: %w", err)
		}
		return users.NewS3Repository(client, c.S3Bucket, c.S3UsersKey), nopCloser{}, nil

	case config.StoragePostgres:
		r, err := users.OpenSQLRepository(ctx, users.DialectPostgres, c.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		return r, r, nil

	case config.StorageSQLite:
		r, err := users.OpenSQLRepository(ctx, users.DialectSQLite, c.UsersFile)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		return r, r, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", c.StorageType)
	}
}
