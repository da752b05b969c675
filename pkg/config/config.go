package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	Booking       BookingConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STAYMATE_APP_ENV" required:"true"`
	Port         string `envconfig:"STAYMATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STAYMATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STAYMATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STAYMATE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STAYMATE_DB_DSN"`
	Driver string `envconfig:"STAYMATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STAYMATE_DB_HOST"`
	LegacyPort     int    `envconfig:"STAYMATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STAYMATE_DB_USER"`
	LegacyPassword string `envconfig:"STAYMATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STAYMATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STAYMATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STAYMATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STAYMATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STAYMATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STAYMATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STAYMATE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STAYMATE_REDIS_ADDR"`
	Password     string        `envconfig:"STAYMATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STAYMATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STAYMATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STAYMATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STAYMATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STAYMATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STAYMATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STAYMATE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STAYMATE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STAYMATE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STAYMATE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STAYMATE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STAYMATE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STAYMATE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STAYMATE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STAYMATE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STAYMATE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STAYMATE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STAYMATE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STAYMATE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STAYMATE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STAYMATE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STAYMATE_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"STAYMATE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// BookingConfig tunes the room booking lifecycle.
type BookingConfig struct {
	// PendingTTL is how long a booking may sit unapproved before the cron
	// worker cancels it.
	PendingTTL time.Duration `envconfig:"STAYMATE_BOOKING_PENDING_TTL" default:"72h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STAYMATE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STAYMATE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STAYMATE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"STAYMATE_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"STAYMATE_GCS_UPLOAD_URL_EXPIRY" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"STAYMATE_GCS_DOWNLOAD_URL_EXPIRY" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"STAYMATE_MAX_UPLOAD_MB" default:"25"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"STAYMATE_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription       string `envconfig:"STAYMATE_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"STAYMATE_PUBSUB_NOTIFICATION_TOPIC" default:"sm-notification-events"`
	NotificationSubscription string `envconfig:"STAYMATE_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STAYMATE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STAYMATE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STAYMATE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
