// config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// --- Section structs, mirroring config.yaml ---

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // debug | release | test
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	UploadLimitMB  int64    `mapstructure:"uploadLimitMB"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration, falling back to seven days.
func (j JWTConfig) TTL() time.Duration {
	d, err := time.ParseDuration(j.Expiration)
	if err != nil || d <= 0 {
		return 7 * 24 * time.Hour
	}
	return d
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type MailConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	From       string `mapstructure:"from"`
	SenderName string `mapstructure:"senderName"`
}

type OAuthClientConfig struct {
	ClientID     string `mapstructure:"clientID"`
	ClientSecret string `mapstructure:"clientSecret"`
	RedirectURL  string `mapstructure:"redirectURL"`
}

// Enabled reports whether the provider has credentials.
func (o OAuthClientConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

type OAuthConfig struct {
	FrontendURL string            `mapstructure:"frontendURL"`
	Google      OAuthClientConfig `mapstructure:"google"`
	GitHub      OAuthClientConfig `mapstructure:"github"`
	Facebook    OAuthClientConfig `mapstructure:"facebook"`
}

type MapsConfig struct {
	APIKey  string        `mapstructure:"apiKey"`
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GeocacheConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite | none
	DSN    string `mapstructure:"dsn"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type CronConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	OTPPurgeSpec  string `mapstructure:"otpPurgeSpec"`
	HeartbeatSpec string `mapstructure:"heartbeatSpec"`
}

type SeedConfig struct {
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
	AdminName     string `mapstructure:"adminName"`
}

// --- Root config ---

var ErrJWTSecretMissing = errors.New("jwt.secret (JWT_SECRET) must be set")

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	S3       S3Config       `mapstructure:"s3"`
	Mail     MailConfig     `mapstructure:"mail"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Maps     MapsConfig     `mapstructure:"maps"`
	Geocache GeocacheConfig `mapstructure:"geocache"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Log      LogConfig      `mapstructure:"log"`
	Cron     CronConfig     `mapstructure:"cron"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.mode":                 "GIN_MODE",
	"mongo.uri":                   "MONGO_URI",
	"mongo.dbName":                "MONGO_DBNAME",
	"redis.addr":                  "REDIS_ADDR",
	"redis.username":              "REDIS_USERNAME",
	"redis.password":              "REDIS_PASSWORD",
	"jwt.secret":                  "JWT_SECRET",
	"jwt.expiration":              "JWT_EXPIRATION",
	"s3.bucket":                   "AWS_BUCKET_NAME",
	"s3.region":                   "AWS_REGION",
	"s3.accessKeyID":              "AWS_ACCESS_KEY_ID",
	"s3.secretAccessKey":          "AWS_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":         "S3_CLOUDFRONT_DOMAIN",
	"mail.host":                   "MAIL_HOST",
	"mail.port":                   "MAIL_PORT",
	"mail.user":                   "MAIL_USER",
	"mail.pass":                   "MAIL_PASS",
	"mail.from":                   "MAIL_FROM",
	"oauth.frontendURL":           "FRONTEND_URL",
	"oauth.google.clientID":       "GOOGLE_CLIENT_ID",
	"oauth.google.clientSecret":   "GOOGLE_CLIENT_SECRET",
	"oauth.google.redirectURL":    "GOOGLE_REDIRECT_URL",
	"oauth.github.clientID":       "GITHUB_CLIENT_ID",
	"oauth.github.clientSecret":   "GITHUB_CLIENT_SECRET",
	"oauth.github.redirectURL":    "GITHUB_REDIRECT_URL",
	"oauth.facebook.clientID":     "FACEBOOK_CLIENT_ID",
	"oauth.facebook.clientSecret": "FACEBOOK_CLIENT_SECRET",
	"oauth.facebook.redirectURL":  "FACEBOOK_REDIRECT_URL",
	"maps.apiKey":                 "GOOGLE_MAPS_API_KEY",
	"maps.baseURL":                "GOOGLE_MAPS_BASE_URL",
	"geocache.driver":             "GEOCACHE_DRIVER",
	"geocache.dsn":                "GEOCACHE_DSN",
	"nats.url":                    "NATS_URL",
	"log.level":                   "LOG_LEVEL",
	"log.development":             "LOG_DEVELOPMENT",
	"cron.enabled":                "CRON_ENABLED",
	"seed.adminEmail":             "SEED_ADMIN_EMAIL",
	"seed.adminPassword":          "SEED_ADMIN_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.uploadLimitMB", 10)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.dbName", "go-quickstart")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("jwt.expiration", "168h")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("maps.baseURL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("maps.timeout", 10*time.Second)
	v.SetDefault("geocache.driver", "none")
	v.SetDefault("log.level", "info")
	v.SetDefault("cron.otpPurgeSpec", "*/15 * * * *")
	v.SetDefault("cron.heartbeatSpec", "0 0 * * *")
	v.SetDefault("seed.adminName", "Admin")
}

// Validate rejects settings the server cannot safely start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrJWTSecretMissing
	}
	return nil
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return
		}
	}

	// A missing file is fine; env vars and defaults carry the config.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
