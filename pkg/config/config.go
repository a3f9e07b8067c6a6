package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// NetworkConfig captures runtime settings for the admin service and CLI.
type NetworkConfig struct {
	ListenAddr    string        `mapstructure:"listen_addr"`
	AdminKey      string        `mapstructure:"admin_key"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	Language      string        `mapstructure:"language"`
	RedisURL      string        `mapstructure:"redis_url"`
	ErrorTTL      time.Duration `mapstructure:"error_ttl"`
	PostgresDSN   string        `mapstructure:"postgres_dsn"`
	EndpointsFile string        `mapstructure:"endpoints_file"`
	SnapshotFile  string        `mapstructure:"snapshot_file"`
	APIKey        string        `mapstructure:"api_key"`
	SFTP          SFTPConfig    `mapstructure:"sftp"`
}

// SFTPConfig locates a remote endpoints document.
type SFTPConfig struct {
	Addr       string `mapstructure:"addr"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	PrivateKey string `mapstructure:"private_key"`
	Path       string `mapstructure:"path"`
}

// LoadNetwork loads configuration from defaults, ./configs/config.*, and
// NETBLANK_* environment variables.
func LoadNetwork() (NetworkConfig, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	return load(v)
}

// LoadNetworkFile loads configuration from an explicit file path.
func LoadNetworkFile(path string) (NetworkConfig, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (NetworkConfig, *viper.Viper, error) {
	v.SetEnvPrefix("NETBLANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("admin_key", "")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("language", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("error_ttl", "24h")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("endpoints_file", "")
	v.SetDefault("snapshot_file", "")
	v.SetDefault("api_key", "")
	v.SetDefault("sftp.addr", "")
	v.SetDefault("sftp.user", "")
	v.SetDefault("sftp.password", "")
	v.SetDefault("sftp.private_key", "")
	v.SetDefault("sftp.path", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return NetworkConfig{}, nil, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg NetworkConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return NetworkConfig{}, nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, v, nil
}
