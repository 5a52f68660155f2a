package cli

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/chainsafe/files-client/internal/flagx"
)

// Config holds the CLI runtime settings.
//
// Precedence: environment variables (FILES_*) > config file > defaults. The
// config file path comes from the -c/-config flag when given.
type Config struct {
	// ServerURL is the base URL of the Files API server.
	ServerURL string `mapstructure:"server_url" validate:"required,url"`

	// Username doubles as the principal UUID on bucket user lists.
	Username string `mapstructure:"username" validate:"required"`

	// Salt feeds the argon2id master-key derivation. Changing it makes
	// previously encrypted content unreadable.
	Salt string `mapstructure:"salt" validate:"required,min=8"`

	// DownloadDir is where downloaded files and archives are written.
	DownloadDir string `mapstructure:"download_dir" validate:"required"`
}

var validate = validator.New()

// LoadConfig builds the configuration from defaults, an optional config file
// and FILES_* environment variables, then validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(flagx.ConfigFlag())
}

func loadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server_url", "http://127.0.0.1:8080")
	v.SetDefault("download_dir", "downloads")

	v.SetEnvPrefix("FILES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper already knows about, so bind each one.
	for _, key := range []string{"server_url", "username", "salt", "download_dir"} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
