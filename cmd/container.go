package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Abraxas-365/cvscreen/internal/ai/embeddings"
	"github.com/Abraxas-365/cvscreen/internal/extract"
	"github.com/Abraxas-365/cvscreen/pkg/circuit"
	"github.com/Abraxas-365/cvscreen/pkg/fsx"
	"github.com/Abraxas-365/cvscreen/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/cvscreen/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/cvscreen/pkg/logx"
	"github.com/Abraxas-365/cvscreen/screening/jd/jdapi"
	"github.com/Abraxas-365/cvscreen/screening/jd/jdinfra"
	"github.com/Abraxas-365/cvscreen/screening/jd/jdsrv"
	"github.com/Abraxas-365/cvscreen/screening/run/runapi"
	"github.com/Abraxas-365/cvscreen/screening/run/runinfra"
	"github.com/Abraxas-365/cvscreen/screening/run/runsrv"
	"github.com/Abraxas-365/cvscreen/screening/upload"
	"github.com/Abraxas-365/cvscreen/screening/upload/uploadapi"
	"github.com/Abraxas-365/cvscreen/screening/upload/uploadinfra"
	"github.com/Abraxas-365/cvscreen/screening/upload/uploadsrv"
	"github.com/Abraxas-365/cvscreen/screening/upload/worker"
	"github.com/Abraxas-365/cvscreen/screening/user/userauth"
	"github.com/Abraxas-365/cvscreen/screening/user/userinfra"
)

const processingQueueName = "resume_processing"

// Container holds all application dependencies
type Container struct {
	// Config
	JWTSecret        string
	OpenAIAPIKey     string
	InlineProcessing bool
	WorkerCount      int

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Queue      upload.JobQueue

	// Services
	TokenService  *userauth.TokenService
	AuthService   *userauth.AuthService
	UploadService *uploadsrv.Service
	Processor     *uploadsrv.Processor
	JDService     *jdsrv.Service
	RunService    *runsrv.Service

	// Worker (nil when processing runs inline)
	Worker *worker.ResumeWorker

	// API Handlers
	AuthHandlers   *userauth.Handlers
	UploadHandlers *uploadapi.Handlers
	JDHandlers     *jdapi.Handlers
	RunHandlers    *runapi.Handlers
}

// NewContainer initializes the dependency injection container
func NewContainer() *Container {
	c := &Container{}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// 1. Database Connection
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASS")
	dbName := os.Getenv("DB_NAME")
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// 2. Redis Connection
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASS")
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPass,
		DB:       0,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. File Storage
	// S3 when a bucket is configured, local disk otherwise.
	awsBucket := os.Getenv("AWS_BUCKET")
	if awsBucket != "" {
		awsRegion := os.Getenv("AWS_REGION")
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, awsBucket, "uploads")
	} else {
		uploadDir := os.Getenv("UPLOAD_DIR")
		if uploadDir == "" {
			uploadDir = "./data/uploads"
		}
		c.FileSystem = fsxlocal.NewLocalFileSystem(uploadDir)
	}

	// 4. Secrets
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		c.JWTSecret = "super-secret-key-please-change-me-in-production"
	}

	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if c.OpenAIAPIKey == "" {
		logx.Warn("OPENAI_API_KEY is not set, embedding requests will fail")
	}

	// 5. Processing Mode
	c.InlineProcessing = os.Getenv("PROCESS_INLINE") == "true"
	c.WorkerCount = 4
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WorkerCount = n
		}
	}
}

func (c *Container) initServices() {
	// --- Repositories ---
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	batchRepo := uploadinfra.NewPostgresBatchRepository(c.DB)
	resumeRepo := uploadinfra.NewPostgresResumeRepository(c.DB)
	jdRepo := jdinfra.NewPostgresJDRepository(c.DB)
	runRepo := runinfra.NewPostgresRunRepository(c.DB)
	ranker := runinfra.NewPostgresRanker(c.DB)

	// --- AI / Extraction ---
	// One breaker instance guards every embedding call in the process.
	breaker := circuit.NewBreaker("openai-embeddings")
	embedder := embeddings.NewProvider(c.OpenAIAPIKey, breaker)
	extractor := extract.NewExtractor()

	// --- Processing Pipeline ---
	c.Processor = uploadsrv.NewProcessor(batchRepo, resumeRepo, c.FileSystem, extractor, embedder)
	c.Queue = uploadinfra.NewRedisQueue(c.Redis, processingQueueName)

	var dispatcher upload.Dispatcher
	if c.InlineProcessing {
		logx.Info("Inline processing enabled, resumes are processed on upload")
		dispatcher = uploadsrv.NewInlineDispatcher(c.Processor)
	} else {
		dispatcher = uploadinfra.NewQueueDispatcher(c.Queue)
		c.Worker = worker.NewResumeWorker(c.Processor, c.Queue, c.WorkerCount)
	}

	// --- Domain Services ---
	c.TokenService = userauth.NewTokenService(c.JWTSecret, 24*time.Hour)
	c.AuthService = userauth.NewAuthService(userRepo, c.TokenService)
	c.UploadService = uploadsrv.NewService(batchRepo, resumeRepo, c.FileSystem, dispatcher)
	c.JDService = jdsrv.NewService(jdRepo)
	c.RunService = runsrv.NewService(jdRepo, batchRepo, runRepo, ranker, embedder)

	// --- Handlers ---
	c.AuthHandlers = userauth.NewHandlers(c.AuthService)
	c.UploadHandlers = uploadapi.NewHandlers(c.UploadService)
	c.JDHandlers = jdapi.NewHandlers(c.JDService)
	c.RunHandlers = runapi.NewHandlers(c.RunService)
}
