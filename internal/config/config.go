package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by DATA_BACKEND and UPLOAD_BACKEND.
const (
	DataBackendFile  = "file"
	DataBackendMongo = "mongo"

	UploadBackendLocal      = "local"
	UploadBackendCloudinary = "cloudinary"
	UploadBackendMinIO      = "minio"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Data       DataConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	Upload     UploadConfig
	Cloudinary CloudinaryConfig
	MinIO      MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	PublicDir    string
	MaxUploadMB  int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DataConfig struct {
	Backend string
	Dir     string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type UploadConfig struct {
	Backend string
	Dir     string
}

type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	FolderPrefix string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	PublicURL string
}

// Addr returns the host:port the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("MAX_UPLOAD_MB", 16)
	v.SetDefault("DATA_BACKEND", DataBackendFile)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("MONGODB_DATABASE", "bakehouse")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("UPLOAD_BACKEND", UploadBackendLocal)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("CLOUDINARY_FOLDER_PREFIX", "dory-")
	v.SetDefault("MINIO_BUCKET", "bakehouse")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			PublicDir:    v.GetString("PUBLIC_DIR"),
			MaxUploadMB:  v.GetInt64("MAX_UPLOAD_MB"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Data: DataConfig{
			Backend: strings.ToLower(v.GetString("DATA_BACKEND")),
			Dir:     v.GetString("DATA_DIR"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Upload: UploadConfig{
			Backend: strings.ToLower(v.GetString("UPLOAD_BACKEND")),
			Dir:     v.GetString("UPLOAD_DIR"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:       v.GetString("CLOUDINARY_API_KEY"),
			APISecret:    v.GetString("CLOUDINARY_API_SECRET"),
			FolderPrefix: v.GetString("CLOUDINARY_FOLDER_PREFIX"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Data.Backend {
	case DataBackendFile:
		if c.Data.Dir == "" {
			return fmt.Errorf("%w: DATA_DIR is empty", ErrInvalidConfig)
		}
	case DataBackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("%w: MONGODB_URI is required for DATA_BACKEND=mongo", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown DATA_BACKEND %q", ErrInvalidConfig, c.Data.Backend)
	}

	switch c.Upload.Backend {
	case UploadBackendLocal:
		if c.Upload.Dir == "" {
			return fmt.Errorf("%w: UPLOAD_DIR is empty", ErrInvalidConfig)
		}
	case UploadBackendCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("%w: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required", ErrInvalidConfig)
		}
	case UploadBackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("%w: MINIO_ENDPOINT and MINIO_BUCKET are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown UPLOAD_BACKEND %q", ErrInvalidConfig, c.Upload.Backend)
	}

	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 16
	}
	return nil
}
