package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/token"
	"github.com/go-otp-auth/internal/application/user"
	"github.com/go-otp-auth/internal/application/verification"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/infrastructure/memory"
	"github.com/go-otp-auth/internal/infrastructure/metrics"
	"github.com/go-otp-auth/internal/infrastructure/notify"
	redisstore "github.com/go-otp-auth/internal/infrastructure/redis"
	s3infra "github.com/go-otp-auth/internal/infrastructure/s3"
	"github.com/go-otp-auth/internal/infrastructure/smtp"
	"github.com/go-otp-auth/internal/infrastructure/sns"
	"github.com/go-otp-auth/internal/pkg/logger"
	"github.com/go-otp-auth/internal/pkg/secret"
	transporthttp "github.com/go-otp-auth/internal/transport/http"
	"go.uber.org/zap"
)

// userStore is what both the auth flow and the profile endpoint need.
type userStore interface {
	UpsertByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByID(ctx context.Context, userID string) (bool, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

type app struct {
	deps    *transporthttp.Deps
	closers []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Named("main").Warn("close failed", zap.Error(err))
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	keys := secret.NewProvider()
	// Generate the key now so an entropy failure stops startup instead of the first login.
	if _, err := keys.Secret(); err != nil {
		return nil, err
	}

	var dynamoAPI dynamo.API
	if cfg.CodeStoreDriver == "dynamo" || cfg.UserStoreDriver == "dynamo" {
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamoAPI = client
	}

	codeStore, err := buildCodeStore(ctx, cfg, dynamoAPI, a)
	if err != nil {
		return nil, err
	}

	var users userStore
	switch cfg.UserStoreDriver {
	case "dynamo":
		users = dynamo.NewUserRepo(dynamoAPI, cfg.DynamoTables.Users)
	default:
		users = memory.NewUserRepo()
	}

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	codes := verification.NewEngine(codeStore, verification.Config{
		CodeLength:      cfg.VerificationCodeLength,
		Expiration:      cfg.VerificationCodeTTL,
		ResendThreshold: cfg.VerificationResendWindow,
	})
	tokens := token.NewEngine(jwtinfra.NewSigner(keys, cfg.JWTIssuer), users, token.Config{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	a.deps = &transporthttp.Deps{
		Auth: auth.NewService(auth.ServiceDeps{
			Codes:    codes,
			Tokens:   tokens,
			Users:    users,
			Notifier: notifier,
			Metrics:  m,
		}),
		Users:   user.NewService(users),
		Tokens:  tokens,
		Metrics: m,
	}
	return a, nil
}

func buildCodeStore(ctx context.Context, cfg *config.Config, dynamoAPI dynamo.API, a *app) (verification.CodeStore, error) {
	switch cfg.CodeStoreDriver {
	case "redis":
		rdb, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return redisstore.NewCodeStore(rdb, cfg.RedisKeyPrefix), nil
	case "dynamo":
		return dynamo.NewVerificationRepo(dynamoAPI, cfg.DynamoTables.Verifications), nil
	default:
		return memory.NewCodeStore(time.Minute), nil
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config) (auth.Notifier, error) {
	switch cfg.NotifierDriver {
	case "smtp":
		tmpl := ""
		if cfg.EmailTemplateBucket != "" && cfg.EmailTemplateKey != "" {
			client, err := s3infra.NewClient(ctx, cfg)
			if err != nil {
				return nil, err
			}
			tmpl, err = s3infra.NewTemplateSource(client, cfg.EmailTemplateBucket, cfg.EmailTemplateKey).Load(ctx)
			if err != nil {
				return nil, err
			}
		}
		return smtp.NewVerificationNotifier(smtp.NewMailer(cfg), tmpl)
	case "sns":
		return sns.NewPublisher(ctx, cfg)
	case "log":
		return notify.NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFIER_DRIVER %q", cfg.NotifierDriver)
	}
}
