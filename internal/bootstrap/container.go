package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatbot-knowledge-be/internal/config"
	"chatbot-knowledge-be/internal/controller"
	"chatbot-knowledge-be/internal/pkg/logger"
	"chatbot-knowledge-be/internal/repository/unitofwork"
	"chatbot-knowledge-be/internal/service"
	"chatbot-knowledge-be/pkg/embedding"
	"chatbot-knowledge-be/pkg/extract"
	pktNats "chatbot-knowledge-be/pkg/nats"
	"chatbot-knowledge-be/pkg/retry"
	"chatbot-knowledge-be/pkg/storage"
	"chatbot-knowledge-be/pkg/textsplitter"
	"chatbot-knowledge-be/pkg/usage"
)

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController
	IngestionController controller.IIngestionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (usage counters)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 3. Pipeline building blocks
	var objectStorage storage.ObjectStorage
	s3Store, err := storage.NewS3Storage(context.Background(), storage.S3Config{
		AccessKey: cfg.Storage.AwsAccessKey,
		SecretKey: cfg.Storage.AwsSecretKey,
		Region:    cfg.Storage.AwsRegion,
		Bucket:    cfg.Storage.Bucket,
	})
	if err != nil {
		// File-backed documents will fail per-document; inline content
		// still ingests.
		log.Printf("[WARN] S3 storage unavailable: %v", err)
	} else {
		objectStorage = s3Store
	}

	extractor := extract.NewExtractor()

	openAIProvider := embedding.NewOpenAIProvider(
		cfg.Embedding.APIKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
	)
	cachedProvider := embedding.NewCachedProvider(
		openAIProvider,
		time.Duration(cfg.Embedding.CacheTTLMin)*time.Minute,
	)
	batchClient := embedding.NewBatchClient(cachedProvider, embedding.BatchClientConfig{
		BatchSize:  cfg.Embedding.BatchSize,
		BatchDelay: time.Duration(cfg.Embedding.BatchDelayMs) * time.Millisecond,
		Dimensions: cfg.Embedding.Dimensions,
		Retry: retry.Config{
			Attempts:     cfg.Ingestion.RetryAttempts,
			InitialDelay: time.Duration(cfg.Ingestion.RetryInitialDelayMs) * time.Millisecond,
		},
	})

	ledger := usage.NewLedger(
		usage.NewRedisCounter(rdb),
		unitofwork.NewUnitOfWork(db).UsageRecordRepository(),
		map[string]int64{
			usage.MetricEmbeddingTokens: cfg.Usage.MonthlyTokenLimit,
		},
		sysLogger,
	)

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.IngestTopic)

	ingestionService := service.NewIngestionService(
		uowFactory,
		objectStorage,
		extractor,
		batchClient,
		ledger,
		natsPub,
		sysLogger,
		service.IngestionOptions{
			DocumentBatchSize: cfg.Ingestion.DocumentBatchSize,
			SplitterOptions: textsplitter.Options{
				MaxLength:          cfg.Ingestion.MaxChunkLength,
				Overlap:            cfg.Ingestion.ChunkOverlap,
				PreserveParagraphs: true,
				PreserveSentences:  true,
			},
		},
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		ingestionService,
		sysLogger,
	)

	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		publisherService,
		cachedProvider,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		IngestionController: controller.NewIngestionController(ingestionService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
