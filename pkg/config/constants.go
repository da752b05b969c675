package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "STAYMATE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "STAYMATE_APP_ENV"
	EnvPort     = "STAYMATE_APP_PORT"
	EnvDBDSN    = "STAYMATE_DB_DSN"
	EnvDBHost   = "STAYMATE_DB_HOST"
	EnvDBUser   = "STAYMATE_DB_USER"
	EnvDBName   = "STAYMATE_DB_NAME"
	EnvRedisURL = "STAYMATE_REDIS_URL"

	EnvJWTSecret              = "STAYMATE_JWT_SECRET"
	EnvJWTIssuer              = "STAYMATE_JWT_ISSUER"
	EnvJWTExpMins             = "STAYMATE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STAYMATE_REFRESH_TOKEN_TTL_MINUTES"

	EnvGCPProjectID      = "STAYMATE_GCP_PROJECT_ID"
	EnvGCSBucket         = "STAYMATE_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry   = "STAYMATE_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry = "STAYMATE_GCS_DOWNLOAD_URL_EXPIRY"

	EnvPubSubDomainTopic       = "STAYMATE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub         = "STAYMATE_PUBSUB_DOMAIN_SUBSCRIPTION"
	EnvPubSubNotificationTopic = "STAYMATE_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "STAYMATE_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
