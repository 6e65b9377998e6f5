package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

// loadDotEnv loads local env files without overriding variables that are
// already present in the process environment.
func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OIDC      OIDCConfig
	Gateway   GatewayConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Gemini    GeminiConfig
	Nano      NanoConfig
	YtDlp     YtDlpConfig
	LinkedIn  LinkedInConfig
	YouTube   YouTubeConfig
	R2        R2Config
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string
	// PublicURL is the externally reachable origin, used for derived links
	// such as thumbnail URLs.
	PublicURL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type GatewayConfig struct {
	Enabled bool
}

type RateLimitConfig struct {
	RemixPerHour int
	BatchPerHour int
	SharePerHour int
}

type StorageConfig struct {
	Driver  string // file, redis or memory
	DataDir string
	TmpDir  string
}

type GeminiConfig struct {
	APIKey             string
	Model              string
	UploadPollInterval time.Duration
	UploadMaxWait      time.Duration
}

type NanoConfig struct {
	URL       string
	MaxTokens int
	Timeout   int // seconds
}

type YtDlpConfig struct {
	Path        string
	BinDir      string
	AutoInstall bool
}

type LinkedInConfig struct {
	AccessToken string
	PersonURN   string
	BaseURL     string
}

type YouTubeConfig struct {
	APIKey string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type WorkerConfig struct {
	PublishInterval string
}

func Load() (*Config, error) {
	loadDotEnv(".env.local", ".env")

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("GEMINI_API_KEY")
	readSecret("LINKEDIN_ACCESS_TOKEN")
	readSecret("YOUTUBE_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.log_format", "LOG_FORMAT")
	_ = v.BindEnv("server.public_url", "PUBLIC_URL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = v.BindEnv("oidc.issuer", "OIDC_ISSUER")
	_ = v.BindEnv("oidc.client_id", "OIDC_CLIENT_ID")
	_ = v.BindEnv("gateway.enabled", "GATEWAY_ENABLED")
	_ = v.BindEnv("ratelimit.remix_per_hour", "RATELIMIT_REMIX_PER_HOUR")
	_ = v.BindEnv("ratelimit.batch_per_hour", "RATELIMIT_BATCH_PER_HOUR")
	_ = v.BindEnv("ratelimit.share_per_hour", "RATELIMIT_SHARE_PER_HOUR")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.data_dir", "DATA_DIR")
	_ = v.BindEnv("storage.tmp_dir", "TMP_DIR")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.model", "GEMINI_MODEL")
	_ = v.BindEnv("gemini.upload_poll_interval", "GEMINI_UPLOAD_POLL_INTERVAL")
	_ = v.BindEnv("gemini.upload_max_wait", "GEMINI_UPLOAD_MAX_WAIT")
	_ = v.BindEnv("nano.url", "NANO_BANANA_URL")
	_ = v.BindEnv("nano.max_tokens", "NANO_MAX_TOKENS")
	_ = v.BindEnv("nano.timeout", "NANO_TIMEOUT")
	_ = v.BindEnv("ytdlp.path", "YTDLP_PATH")
	_ = v.BindEnv("ytdlp.bin_dir", "YTDLP_BIN_DIR")
	_ = v.BindEnv("ytdlp.auto_install", "YTDLP_AUTO_INSTALL")
	_ = v.BindEnv("linkedin.access_token", "LINKEDIN_ACCESS_TOKEN")
	_ = v.BindEnv("linkedin.person_urn", "LINKEDIN_PERSON_URN")
	_ = v.BindEnv("linkedin.base_url", "LINKEDIN_BASE_URL")
	_ = v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("worker.publish_interval", "WORKER_PUBLISH_INTERVAL")

	// Defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "")
	v.SetDefault("server.public_url", "http://localhost:8000")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiration", 24)
	v.SetDefault("gateway.enabled", false)
	v.SetDefault("ratelimit.remix_per_hour", 30)
	v.SetDefault("ratelimit.batch_per_hour", 5)
	v.SetDefault("ratelimit.share_per_hour", 20)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.tmp_dir", "tmp")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.upload_poll_interval", 2*time.Second)
	v.SetDefault("gemini.upload_max_wait", 10*time.Minute)

	v.SetDefault("nano.max_tokens", 2048)
	v.SetDefault("nano.timeout", 120)

	v.SetDefault("ytdlp.path", "")
	v.SetDefault("ytdlp.bin_dir", "bin")
	v.SetDefault("ytdlp.auto_install", true)

	v.SetDefault("linkedin.base_url", "https://api.linkedin.com/v2")

	v.SetDefault("worker.publish_interval", "@every 1m")

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			Env:       v.GetString("server.env"),
			LogLevel:  v.GetString("server.log_level"),
			LogFormat: v.GetString("server.log_format"),
			PublicURL: strings.TrimRight(v.GetString("server.public_url"), "/"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetInt("jwt.expiration"),
		},
		OIDC: OIDCConfig{
			Issuer:   v.GetString("oidc.issuer"),
			ClientID: v.GetString("oidc.client_id"),
		},
		Gateway: GatewayConfig{
			Enabled: v.GetBool("gateway.enabled"),
		},
		RateLimit: RateLimitConfig{
			RemixPerHour: v.GetInt("ratelimit.remix_per_hour"),
			BatchPerHour: v.GetInt("ratelimit.batch_per_hour"),
			SharePerHour: v.GetInt("ratelimit.share_per_hour"),
		},
		Storage: StorageConfig{
			Driver:  v.GetString("storage.driver"),
			DataDir: v.GetString("storage.data_dir"),
			TmpDir:  v.GetString("storage.tmp_dir"),
		},
		Gemini: GeminiConfig{
			APIKey:             v.GetString("gemini.api_key"),
			Model:              v.GetString("gemini.model"),
			UploadPollInterval: v.GetDuration("gemini.upload_poll_interval"),
			UploadMaxWait:      v.GetDuration("gemini.upload_max_wait"),
		},
		Nano: NanoConfig{
			URL:       v.GetString("nano.url"),
			MaxTokens: v.GetInt("nano.max_tokens"),
			Timeout:   v.GetInt("nano.timeout"),
		},
		YtDlp: YtDlpConfig{
			Path:        v.GetString("ytdlp.path"),
			BinDir:      v.GetString("ytdlp.bin_dir"),
			AutoInstall: v.GetBool("ytdlp.auto_install"),
		},
		LinkedIn: LinkedInConfig{
			AccessToken: v.GetString("linkedin.access_token"),
			PersonURN:   v.GetString("linkedin.person_urn"),
			BaseURL:     v.GetString("linkedin.base_url"),
		},
		YouTube: YouTubeConfig{
			APIKey: v.GetString("youtube.api_key"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
		Worker: WorkerConfig{
			PublishInterval: v.GetString("worker.publish_interval"),
		},
	}

	return cfg, nil
}
