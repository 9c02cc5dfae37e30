package deps

import (
	"context"
	"fmt"
	"resetme/internal/config"
	dl "resetme/internal/core/domain/logging"
	passwordreset "resetme/internal/core/domain/password_reset"
	drl "resetme/internal/core/domain/rate_limiter"
	duow "resetme/internal/core/domain/unit_of_work"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	dbpasswordreset "resetme/internal/db/password_reset"
	uow "resetme/internal/db/unit_of_work"
	"resetme/internal/implementations/email"
	"resetme/internal/implementations/logging"
	passwordhasher "resetme/internal/implementations/password_hasher"
	ratelimiter "resetme/internal/implementations/rate_limiter"
	tokengenerator "resetme/internal/implementations/token_generator"
	"resetme/internal/rabbitmq"
	passwordresetevents "resetme/internal/rabbitmq/publishers/password_reset_events"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork              duow.UnitOfWork
	PasswordResetRepository passwordreset.Repository

	PasswordHasher user.PasswordHasher
	TokenGenerator passwordreset.TokenGenerator
	Notifier       passwordreset.Notifier
	EventPublisher passwordreset.EventPublisher
	RateLimiter    drl.RateLimiter
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}
	deps.initConfig()

	closeLogger := deps.initLogger()
	flushSentry := deps.initSentry()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.applyMigrations()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeEventPublisher := deps.initEventPublisher()

	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.PasswordResetRepository = dbpasswordreset.NewPgxRepository(deps.DB)
	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.TokenGenerator = tokengenerator.NewGenerator()
	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.Notifier = deps.initNotifier()

	return deps, func() {
		closeFuncs := []func(){
			closeEventPublisher,
			closeRedisClient,
			closePgxPool,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}
		wg.Wait()

		flushSentry()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.IsTestMode)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) applyMigrations() {
	if !deps.Config.MigrateOnStart {
		return
	}
	if err := db.ApplyMigrations(deps.Config.PostgresqlURL); err != nil {
		deps.Logger.Error(context.Background(), "Could not apply DB migrations.", dl.Entry("err", err))
		panic(err)
	}
	deps.Logger.Info(context.Background(), "DB migrations applied.")
}

func (deps *Deps) initPgxPool() func() {
	pool, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = pool
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		pool.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

// initEventPublisher falls back to a no-op publisher when RabbitMQ is not
// configured.
func (deps *Deps) initEventPublisher() func() {
	if deps.Config.RabbitmqURL == "" {
		deps.Logger.Info(context.Background(), "RabbitMQ is disabled, password reset events are not published.")
		deps.EventPublisher = passwordreset.NoopEventPublisher{}
		return func() {}
	}

	connection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = connection

	channel, err := connection.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	exchange := deps.Config.RabbitmqPasswordResetExchange
	if err := channel.DeclareTopicExchange(exchange); err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not create RabbitMQ exchange.",
			dl.Entry("err", err),
			dl.Entry("exchange", exchange),
		)
		panic(err)
	}

	deps.EventPublisher = passwordresetevents.NewRabbitMQ(deps.Logger, channel, exchange)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		channel.Close()
		connection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initNotifier() passwordreset.Notifier {
	cfg := deps.Config
	switch cfg.EmailBackend {
	case config.EmailBackendSES:
		deps.initAwsConfig()
		return email.NewSESNotifier(
			deps.AwsConfig,
			cfg.EmailSender,
			cfg.AwsEmailPasswordResetTemplate,
			cfg.AwsEmailPasswordResetConfirmationTemplate,
			cfg.PasswordResetBaseURL,
		)
	case config.EmailBackendSMTP:
		sender := &email.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailSender,
			FromName: cfg.EmailSenderName,
			UseTLS:   cfg.SMTPUseTLS,
		}
		return email.NewNotifier(sender, cfg.PasswordResetBaseURL, cfg.PasswordResetTokenTTL)
	default:
		deps.Logger.Warning(
			context.Background(),
			"Console email backend is enabled, reset links are written to the log.",
		)
		return email.NewNotifier(
			email.NewConsoleSender(deps.Logger),
			cfg.PasswordResetBaseURL,
			cfg.PasswordResetTokenTTL,
		)
	}
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDSN,
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
