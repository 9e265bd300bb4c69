package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Env          string        `mapstructure:"env"`
	Port         int           `mapstructure:"port"`
	ClientURL    string        `mapstructure:"client_url"`
	UploadDir    string        `mapstructure:"upload_dir"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MongoCfg struct {
	URI             string        `mapstructure:"uri"`
	Database        string        `mapstructure:"database"`
	UserCollection  string        `mapstructure:"user_collection"`
	TokenCollection string        `mapstructure:"token_collection"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

type JWTCfg struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	ResetLinkTTL  time.Duration `mapstructure:"reset_link_ttl"`
}

type MailCfg struct {
	APIKey      string `mapstructure:"api_key"`
	SenderEmail string `mapstructure:"sender_email"`
	SenderName  string `mapstructure:"sender_name"`
	Enabled     bool   `mapstructure:"enabled"`
}

type Config struct {
	App         AppCfg   `mapstructure:"app"`
	Mongo       MongoCfg `mapstructure:"mongo"`
	JWT         JWTCfg   `mapstructure:"jwt"`
	Mail        MailCfg  `mapstructure:"mail"`
	AdminEmails []string `mapstructure:"admin_emails"`
}

// IsProduction gates the Secure flag on auth cookies.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsAdminEmail reports whether email is in the configured admin list
// (case-insensitive).
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// Load reads config.yaml and applies environment overrides, e.g.
// APP_MONGO_URI, APP_JWT_ACCESS_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 3000
	}
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = "static/uploads/users"
	}
	if cfg.App.ReadTimeout == 0 {
		cfg.App.ReadTimeout = 15 * time.Second
	}
	if cfg.App.WriteTimeout == 0 {
		cfg.App.WriteTimeout = 15 * time.Second
	}
	if cfg.App.IdleTimeout == 0 {
		cfg.App.IdleTimeout = 60 * time.Second
	}
	if cfg.Mongo.UserCollection == "" {
		cfg.Mongo.UserCollection = "users"
	}
	if cfg.Mongo.TokenCollection == "" {
		cfg.Mongo.TokenCollection = "tokens"
	}
	if cfg.Mongo.ConnectTimeout == 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}
	if cfg.JWT.AccessTTL == 0 {
		cfg.JWT.AccessTTL = 15 * time.Minute
	}
	if cfg.JWT.RefreshTTL == 0 {
		cfg.JWT.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.JWT.ResetLinkTTL == 0 {
		cfg.JWT.ResetLinkTTL = 15 * time.Minute
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required (APP_MONGO_URI)")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("jwt.access_secret and jwt.refresh_secret are required")
	}
	if cfg.App.ClientURL == "" {
		return nil, errors.New("app.client_url is required")
	}

	return &cfg, nil
}
