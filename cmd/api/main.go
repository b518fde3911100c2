package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/mediadrop/internal/auth"
	"github.com/abduss/mediadrop/internal/config"
	"github.com/abduss/mediadrop/internal/disk"
	"github.com/abduss/mediadrop/internal/logger"
	"github.com/abduss/mediadrop/internal/media"
	"github.com/abduss/mediadrop/internal/metrics"
	"github.com/abduss/mediadrop/internal/server"
	"github.com/abduss/mediadrop/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type mediaRepository interface {
	Insert(ctx context.Context, m media.Media) (media.Media, error)
	Find(ctx context.Context, id uuid.UUID) (media.Media, error)
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
}

type userRepository interface {
	CreateUser(ctx context.Context, email, passwordHash string, displayName *string) (auth.User, error)
	FindUserByEmail(ctx context.Context, email string) (auth.User, error)
	Migrate(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mediaRepo, userRepo, closeDB, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		zl.Fatal("open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeDB()

	if cfg.Database.AutoMigrate {
		if err := userRepo.Migrate(ctx); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
		if err := mediaRepo.Migrate(ctx); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
	}

	disks, localRoot, err := openDisks(ctx, cfg)
	if err != nil {
		zl.Fatal("configure disks", zap.Error(err))
	}

	authService := auth.NewService(userRepo, cfg.Auth)
	mediaService := media.NewService(
		mediaRepo,
		disks,
		media.NewValidator(cfg.Media.MaxUploadKB),
		cfg.Media.Namespace,
		metrics.NewIngestObserver(),
		zl,
	)

	router, err := server.NewRouter(server.Dependencies{
		Config:       cfg,
		Logger:       zl,
		AuthService:  authService,
		MediaService: mediaService,
		Repository:   mediaRepo,
		Disks:        disks,
		LocalRoot:    localRoot,
	})
	if err != nil {
		zl.Fatal("build router", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zl.Info("MediaDrop API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("db", cfg.Database.Driver),
			zap.String("disk", disks.DefaultDisk()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zl.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (mediaRepository, userRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return media.NewSQLiteRepository(db), auth.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
	default:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		return media.NewRepository(pool), auth.NewRepository(pool), pool.Close, nil
	}
}

// openDisks registers the public disk, plus MinIO when enabled. The returned
// root is the local directory to serve statically.
func openDisks(ctx context.Context, cfg config.Config) (*disk.Manager, string, error) {
	local, err := disk.NewLocalDisk(cfg.Storage.Local.Root, cfg.Storage.Local.PublicURL)
	if err != nil {
		return nil, "", err
	}
	disks := map[string]disk.Disk{config.DiskPublic: local}

	if cfg.Storage.MinIO.Enabled {
		client, err := storage.NewMinIOClient(cfg.Storage.MinIO)
		if err != nil {
			return nil, "", err
		}
		if err := storage.PrepareMediaBucket(ctx, client, cfg.Storage.MinIO, cfg.Media.Namespace); err != nil {
			return nil, "", err
		}
		disks[config.DiskMinIO] = disk.NewMinIODisk(client, cfg.Storage.MinIO.Bucket, cfg.Storage.MinIO.PublicURL, cfg.Storage.MinIO.PresignTTL)
	}

	manager, err := disk.NewManager(cfg.Storage.DefaultDisk, disks)
	if err != nil {
		return nil, "", err
	}
	return manager, local.Root(), nil
}
