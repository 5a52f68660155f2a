package devserver

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/chainsafe/files-client/internal/devserver/blob"
	"github.com/chainsafe/files-client/internal/flagx"
)

// RunConfig is the standalone binary's runtime configuration.
//
// Precedence: environment variables (FILES_SERVER_*) > config file > defaults.
type RunConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr" validate:"required"`

	// JWTSecret signs access and refresh tokens.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=16"`

	// Users maps usernames to plaintext passwords. Development only.
	Users map[string]string `mapstructure:"users" validate:"required,min=1"`

	// TotalStorage is the advertised quota in bytes. Zero means the default.
	TotalStorage int64 `mapstructure:"total_storage"`

	// BlobBackend selects object storage: "memory" or "s3".
	BlobBackend string `mapstructure:"blob_backend" validate:"oneof=memory s3"`

	// S3 configures the s3 backend; ignored for memory.
	S3 blob.S3Config `mapstructure:"s3"`
}

var validate = validator.New()

// LoadConfig builds the configuration from defaults, an optional config file
// given via -c/-config and FILES_SERVER_* environment variables.
func LoadConfig() (*RunConfig, error) {
	return loadConfig(flagx.ConfigFlag())
}

func loadConfig(configPath string) (*RunConfig, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("blob_backend", "memory")

	v.SetEnvPrefix("FILES_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"addr", "jwt_secret", "total_storage", "blob_backend",
		"s3.bucket", "s3.region", "s3.endpoint", "s3.access_key", "s3.secret_key", "s3.key_prefix"} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.BlobBackend == "s3" && cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("invalid configuration: s3 backend needs a bucket")
	}
	return &cfg, nil
}
