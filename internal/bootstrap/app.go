package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-importer/internal/account"
	googleauth "resume-importer/internal/auth"
	"resume-importer/internal/extract"
	"resume-importer/internal/imports"
	"resume-importer/internal/inference"
	"resume-importer/internal/queue"
	"resume-importer/internal/resumes"
	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/server"
	"resume-importer/internal/shared/storage/db"
	"resume-importer/internal/shared/storage/object"
	localstore "resume-importer/internal/shared/storage/object/local"
	miniostore "resume-importer/internal/shared/storage/object/minio"
	s3store "resume-importer/internal/shared/storage/object/s3"
	"resume-importer/internal/shared/telemetry"
	"resume-importer/internal/uploads"
	"resume-importer/internal/users"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	UploadsStore   object.ObjectStore
	Queue          queue.Client
	ImportsRepo    imports.Repo
	ResumesRepo    resumes.Repo
	UsersRepo      users.Repo
	ImportsService *imports.Service
	ResumesService *resumes.Service
	AccountService *account.Service
	UsersService   *users.Service
	ImportsHandler *imports.Handler
	ResumesHandler *resumes.Handler
	UploadsHandler *uploads.Handler
	AccountHandler *account.Handler
	UsersHandler   *users.Handler
	GoogleAuth     *googleauth.GoogleService
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	if cfg.LogLevel != "" {
		telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploadsStore, uploadsHandler, err := buildUploads(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		UploadsStore:   uploadsStore,
		Queue:          queueClient,
		UploadsHandler: uploadsHandler,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		ImportsHandler: app.ImportsHandler,
		ResumesHandler: app.ResumesHandler,
		UploadsHandler: app.UploadsHandler,
		AccountHandler: app.AccountHandler,
		UserHandler:    app.UsersHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory_fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	profile := db.RuntimeProfile()
	open := db.Open
	if profile == db.ProfileLambda {
		open = db.Shared
	}
	sqlDB, err := open(ctx, cfg.DatabaseURL, db.PoolFor(profile))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory_fallback", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.AWSRegion,
			UseSSL:    cfg.MinIOUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.ImportQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.ImportQueueURL)
}

// buildUploads wires the presign handler and a reader over the same bucket.
// Without a bucket the handler still mounts and answers 503.
func buildUploads(ctx context.Context, cfg config.Config) (object.ObjectStore, *uploads.Handler, error) {
	if strings.TrimSpace(cfg.UploadsBucket) == "" {
		return nil, uploads.NewHandler(nil, "", cfg.UploadsPrefix), nil
	}
	handler, err := uploads.NewFromConfig(ctx, cfg.AWSRegion, cfg.UploadsBucket, cfg.UploadsPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("uploads presign: %w", err)
	}
	// keys returned by presign already carry the prefix
	store, err := s3store.New(ctx, cfg.AWSRegion, cfg.UploadsBucket, "", "")
	if err != nil {
		return nil, nil, fmt.Errorf("uploads store: %w", err)
	}
	return store, handler, nil
}

func newExtractor(cfg config.Config) *extract.Engine {
	if cfg.PDFPrimaryDecoder {
		return extract.NewEngine(extract.LedongthucDecoder{})
	}
	return extract.NewEngine(nil)
}

func newInferrer(cfg config.Config) (*inference.Engine, error) {
	path := strings.TrimSpace(cfg.SkillsCatalogFile)
	if path == "" {
		return inference.NewEngine(nil), nil
	}
	catalog, err := inference.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	telemetry.Info("bootstrap.skills_catalog.loaded", map[string]any{"path": path, "categories": len(catalog)})
	return inference.NewEngine(catalog), nil
}

func buildServices(app *App) error {
	var importRepo imports.Repo
	var resumeRepo resumes.Repo
	var userRepo users.Repo

	if app.DB != nil {
		importRepo = &imports.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		importRepo = imports.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	uploadsPrefix := ""
	if app.UploadsHandler != nil {
		uploadsPrefix = app.UploadsHandler.Prefix()
	}

	inferrer, err := newInferrer(app.Config)
	if err != nil {
		return err
	}
	importSvc := &imports.Service{
		Repo:            importRepo,
		Store:           app.Store,
		StorageProvider: app.Config.ObjectStoreType,
		Uploads:         app.UploadsStore,
		UploadsPrefix:   uploadsPrefix,
		Extractor:       newExtractor(app.Config),
		Inferrer:        inferrer,
		Queue:           app.Queue,
	}
	resumeSvc := resumes.NewService(resumeRepo, importSvc)
	userSvc := users.NewService(userRepo)

	app.ImportsRepo = importRepo
	app.ResumesRepo = resumeRepo
	app.UsersRepo = userRepo
	app.ImportsService = importSvc
	app.ResumesService = resumeSvc
	app.AccountService = account.NewService(importRepo, resumeRepo)
	app.UsersService = userSvc
	app.ImportsHandler = imports.NewHandler(importSvc)
	app.ResumesHandler = resumes.NewHandler(resumeSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	if app.ImportsHandler == nil || app.ResumesHandler == nil {
		return errors.New("failed to initialize handlers")
	}
	return nil
}
