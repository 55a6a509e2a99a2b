package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	t.Setenv("UPLOAD_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, DataBackendFile, cfg.Data.Backend)
	require.Equal(t, "data", cfg.Data.Dir)
	require.Equal(t, UploadBackendLocal, cfg.Upload.Backend)
	require.Equal(t, "uploads", cfg.Upload.Dir)
	require.Equal(t, "dory-", cfg.Cloudinary.FolderPrefix)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, int64(16), cfg.Server.MaxUploadMB)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_BACKEND", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "bakehouse_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("UPLOAD_BACKEND", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, DataBackendMongo, cfg.Data.Backend)
	require.Equal(t, "bakehouse_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
	require.Equal(t, UploadBackendCloudinary, cfg.Upload.Backend)
	require.Equal(t, "demo", cfg.Cloudinary.CloudName)
}

func TestLoadConfigRejectsMissingCredentials(t *testing.T) {
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("UPLOAD_BACKEND", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("CLOUDINARY_API_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file+local", Config{Data: DataConfig{Backend: "file", Dir: "d"}, Upload: UploadConfig{Backend: "local", Dir: "u"}}, true},
		{"mongo without uri", Config{Data: DataConfig{Backend: "mongo"}, Upload: UploadConfig{Backend: "local", Dir: "u"}}, false},
		{"unknown data backend", Config{Data: DataConfig{Backend: "sqlite"}, Upload: UploadConfig{Backend: "local", Dir: "u"}}, false},
		{"minio without endpoint", Config{Data: DataConfig{Backend: "file", Dir: "d"}, Upload: UploadConfig{Backend: "minio"}, MinIO: MinIOConfig{Bucket: "b"}}, false},
		{"minio", Config{Data: DataConfig{Backend: "file", Dir: "d"}, Upload: UploadConfig{Backend: "minio"}, MinIO: MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}}, true},
		{"unknown upload backend", Config{Data: DataConfig{Backend: "file", Dir: "d"}, Upload: UploadConfig{Backend: "s3"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}
