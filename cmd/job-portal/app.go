// cmd/job-portal/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	awsx "job-portal/internal/common/aws"
	"job-portal/internal/common/config"
	"job-portal/internal/common/database"
	"job-portal/internal/common/logger"
	"job-portal/internal/repository"
	sendnotification "job-portal/internal/workers/application/send-notification"
)

// app holds the connections shared by every command.
type app struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger

	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient

	applications *repository.ApplicationStore
	jobs         *repository.JobRepository
	users        *repository.UserRepository
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a := &app{cfg: cfg, zapLog: zapLog, log: logger.NewZapAdapter(zapLog)}

	a.pg, err = database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return a.pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		a.close()
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	a.redis, err = database.NewRedis(cfg.Database.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return a.redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		a.close()
		return nil, err
	}
	zapLog.Info("Redis connected successfully")

	// search falls back to postgres, so elasticsearch is not fatal
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			a.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return a.es.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, job search uses PostgreSQL", zap.Error(err))
			a.es = nil
		} else if err := a.es.EnsureJobsIndex(ctx, cfg.Database.Elasticsearch.JobsIndex); err != nil {
			zapLog.Warn("Failed to ensure jobs index", zap.Error(err))
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	cacheTTL := config.GetDuration(cfg.Database.Redis.CacheTTL)
	a.applications = repository.NewApplicationStore(a.pg.DB, a.redis.Client, cacheTTL, a.log)
	a.jobs = repository.NewJobRepository(a.pg.DB, a.redis.Client)
	a.users = repository.NewUserRepository(a.pg.DB)

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	_ = a.zapLog.Sync()
}

// integrations are the optional AWS clients. Disabled services stay nil.
type integrations struct {
	ses     sendnotification.SESService
	sns     sendnotification.SNSService
	resumes *awsx.ResumeStore
}

func (a *app) loadIntegrations(ctx context.Context) (*integrations, error) {
	aws := a.cfg.Integrations.AWS
	in := &integrations{}
	if !aws.SES.Enabled && !aws.SNS.Enabled && !aws.S3.Enabled {
		return in, nil
	}

	awsCfg, err := awsx.LoadConfig(ctx, aws.Region)
	if err != nil {
		return nil, err
	}

	if aws.SES.Enabled {
		in.ses = awsx.NewSESClient(awsCfg)
	}
	if aws.SNS.Enabled {
		in.sns = awsx.NewSNSClient(awsCfg)
	}
	if aws.S3.Enabled {
		in.resumes = awsx.NewResumeStore(awsx.NewS3Client(awsCfg), aws.S3.Bucket, aws.S3.Prefix)
	}

	a.log.Info("AWS integrations initialized", map[string]interface{}{
		"region": aws.Region,
		"ses":    aws.SES.Enabled,
		"sns":    aws.SNS.Enabled,
		"s3":     aws.S3.Enabled,
	})
	return in, nil
}

func (a *app) newNotifier(in *integrations) *sendnotification.Notifier {
	return sendnotification.NewNotifier(sendnotification.LoadConfig(a.cfg), a.applications, in.ses, in.sns, a.log)
}
