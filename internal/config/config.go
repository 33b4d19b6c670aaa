package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	VerificationCodeLength   int
	VerificationCodeTTL      time.Duration
	VerificationResendWindow time.Duration

	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CodeStoreDriver string // "redis" | "dynamo" | "memory"
	UserStoreDriver string // "dynamo" | "memory"
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	NotifierDriver string // "smtp" | "sns" | "log"
	SMTPHost       string
	SMTPPort       int
	SMTPFrom       string
	SMTPUsername   string
	SMTPPassword   string
	SNSRegion      string
	SNSTopicARN    string

	EmailTemplateBucket string
	EmailTemplateKey    string

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string // CORS allowed origins
	// TrustedProxies lists the CIDRs whose X-Forwarded-For / X-Real-Ip headers
	// the rate limiter believes. Empty means key on the connection address only.
	TrustedProxies []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Verifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VerificationCodeLength:   getEnvInt("VERIFICATION_CODE_LENGTH", 6),
		VerificationCodeTTL:      time.Duration(getEnvInt("VERIFICATION_CODE_EXPIRATION_MINUTES", 5)) * time.Minute,
		VerificationResendWindow: time.Duration(getEnvInt("VERIFICATION_CODE_RESEND_THRESHOLD_SECONDS", 60)) * time.Second,

		JWTIssuer:       getEnv("JWT_ISSUER", "otp-auth"),
		AccessTokenTTL:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRATION_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRATION_MINUTES", 7*24*60)) * time.Minute,

		CodeStoreDriver: strings.ToLower(getEnv("CODE_STORE_DRIVER", "redis")),
		UserStoreDriver: strings.ToLower(getEnv("USER_STORE_DRIVER", "dynamo")),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:  getEnv("REDIS_KEY_PREFIX", "verification"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Verifications: getEnv("DYNAMO_TABLE_VERIFICATIONS", "verification_codes"),
		},

		NotifierDriver: strings.ToLower(getEnv("NOTIFIER_DRIVER", "smtp")),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),

		EmailTemplateBucket: getEnv("EMAIL_TEMPLATE_BUCKET", ""),
		EmailTemplateKey:    getEnv("EMAIL_TEMPLATE_KEY", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
	}
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.VerificationCodeLength < 4 || c.VerificationCodeLength > 10 {
		errs = append(errs, fmt.Errorf("VERIFICATION_CODE_LENGTH must be between 4 and 10, got %d", c.VerificationCodeLength))
	}
	if c.VerificationCodeTTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_CODE_EXPIRATION_MINUTES must be positive"))
	}
	if c.VerificationResendWindow < 0 {
		errs = append(errs, errors.New("VERIFICATION_CODE_RESEND_THRESHOLD_SECONDS must not be negative"))
	}
	if strings.TrimSpace(c.JWTIssuer) == "" {
		errs = append(errs, errors.New("JWT_ISSUER must not be empty"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token expirations must be positive"))
	}
	switch c.CodeStoreDriver {
	case "redis", "dynamo", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown CODE_STORE_DRIVER %q", c.CodeStoreDriver))
	}
	switch c.UserStoreDriver {
	case "dynamo", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown USER_STORE_DRIVER %q", c.UserStoreDriver))
	}
	switch c.NotifierDriver {
	case "smtp", "sns", "log":
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFIER_DRIVER %q", c.NotifierDriver))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %q is not a CIDR", cidr))
		}
	}
	return errors.Join(errs...)
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
