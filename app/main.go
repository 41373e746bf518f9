package main

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Guyuepp/travel-feed/domain"
	"github.com/Guyuepp/travel-feed/internal/config"
	minioRepo "github.com/Guyuepp/travel-feed/internal/repository/minio"
	mysqlRepo "github.com/Guyuepp/travel-feed/internal/repository/mysql"
	"github.com/Guyuepp/travel-feed/internal/repository/mysql/model"
	myRedisCache "github.com/Guyuepp/travel-feed/internal/repository/redis"
	s3Repo "github.com/Guyuepp/travel-feed/internal/repository/s3"
	"github.com/Guyuepp/travel-feed/internal/rest"
	"github.com/Guyuepp/travel-feed/internal/rest/middleware"
	"github.com/Guyuepp/travel-feed/internal/usecase"
	"github.com/Guyuepp/travel-feed/internal/usecase/comment"
	"github.com/Guyuepp/travel-feed/internal/usecase/feed"
	"github.com/Guyuepp/travel-feed/internal/usecase/subcomment"
	"github.com/Guyuepp/travel-feed/internal/usecase/user"
	"github.com/Guyuepp/travel-feed/internal/usecase/view"
	"github.com/Guyuepp/travel-feed/internal/workers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("invalid log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	//prepare database
	db := openDatabase(cfg.Database)
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			logrus.Error("got error when getting sql.DB from gorm.DB: ", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			logrus.Error("got error when closing the DB connection: ", err)
		}
	}()

	if err := db.AutoMigrate(model.All()...); err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	// prepare cache
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Cache.Host, cfg.Cache.Port),
		Password: cfg.Cache.Pass,
		DB:       cfg.Cache.DB,
	})
	defer func() {
		if err := client.Close(); err != nil {
			logrus.Error("got error when closing the cache connection: ", err)
		}
	}()

	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.Fatal("failed to open connection to cache: ", err)
	}

	// prepare blob store
	blobs, err := openBlobStore(cfg.Blob)
	if err != nil {
		logrus.Fatal("failed to open blob store: ", err)
	}

	// Prepare Repository
	transactor := mysqlRepo.NewTransactor(db)
	feedRepo := mysqlRepo.NewFeedRepository(db)
	imageRepo := mysqlRepo.NewImageRepository(db)
	locationRepo := mysqlRepo.NewLocationRepository(db)
	commentRepo := mysqlRepo.NewCommentRepository(db)
	subCommentRepo := mysqlRepo.NewSubCommentRepository(db)
	userRepo := mysqlRepo.NewUserRepository(db)

	viewCache := myRedisCache.NewViewCache(client)
	bloomRepo := myRedisCache.NewRedisBloomRepo(client, cfg.Cache.BloomSize)

	// 浏览量: 防刷 -> 累加 -> 定时回写
	guard := view.NewGuard(viewCache)
	counter := view.NewCounter(viewCache)

	// Build service Layer
	feedSvc := feed.NewService(feed.Deps{
		Transactor:  transactor,
		Feeds:       feedRepo,
		Images:      imageRepo,
		Locations:   locationRepo,
		Comments:    commentRepo,
		SubComments: subCommentRepo,
		Users:       userRepo,
		Blobs:       blobs,
		Bloom:       bloomRepo,
		Guard:       guard,
		Counter:     counter,
	})
	commentSvc := comment.NewService(transactor, feedRepo, commentRepo, subCommentRepo, userRepo, bloomRepo)
	subCommentSvc := subcomment.NewService(transactor, feedRepo, commentRepo, subCommentRepo, userRepo, bloomRepo)
	userSvc := user.NewService(user.Deps{
		Transactor:  transactor,
		Users:       userRepo,
		Feeds:       feedRepo,
		Images:      imageRepo,
		Locations:   locationRepo,
		Comments:    commentRepo,
		SubComments: subCommentRepo,
		Blobs:       blobs,
		Guard:       guard,
		Counter:     counter,
	}, usecase.DefaultRetry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prepare bloom filter
	if err := feedSvc.InitBloomFilter(ctx); err != nil {
		logrus.Errorf("failed to init bloom filter: %v", err)
		return
	}

	// Start worker
	viewsSyncer := workers.NewSyncViewWorker(feedRepo, counter, workers.ViewSyncConfig{
		Interval:    cfg.Workers.ViewSyncInterval,
		FeedTimeout: cfg.Workers.ViewSyncFeedTimeout,
		Parallelism: cfg.Workers.ViewSyncParallelism,
	})
	workerDone := startWorker(ctx, viewsSyncer)

	// prepare gin
	rest.RegisterValidations()
	route := gin.Default()
	route.Use(middleware.CORS())
	route.Use(middleware.SetRequestContextWithTimeout(cfg.Server.ContextTimeout))

	feedHandler := rest.NewFeedHandler(feedSvc)
	commentHandler := rest.NewCommentHandler(commentSvc)
	subCommentHandler := rest.NewSubCommentHandler(subCommentSvc)
	userHandler := rest.NewUserHandler(userSvc)

	authMiddleware := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	// Register routes
	route.GET("/metrics", gin.WrapH(promhttp.Handler()))
	route.GET("/feeds/:id", feedHandler.Detail)

	authorized := route.Group("/")
	authorized.Use(authMiddleware)
	{
		authorized.POST("/feeds", feedHandler.Create)
		authorized.DELETE("/feeds/:id", feedHandler.Delete)
		authorized.POST("/feeds/:id/like", feedHandler.Like)
		authorized.DELETE("/feeds/:id/like", feedHandler.Dislike)

		authorized.POST("/feeds/:id/comments", commentHandler.Create)
		authorized.PUT("/feeds/:id/comments/:commentID", commentHandler.Update)
		authorized.DELETE("/feeds/:id/comments/:commentID", commentHandler.Delete)
		authorized.POST("/feeds/:id/comments/:commentID/like", commentHandler.Like)
		authorized.DELETE("/feeds/:id/comments/:commentID/like", commentHandler.Dislike)

		authorized.POST("/feeds/:id/comments/:commentID/replies", subCommentHandler.Create)
		authorized.PUT("/feeds/:id/comments/:commentID/replies/:subCommentID", subCommentHandler.Update)
		authorized.DELETE("/feeds/:id/comments/:commentID/replies/:subCommentID", subCommentHandler.Delete)

		authorized.DELETE("/users/me", userHandler.Withdraw)
	}

	// Start Server
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: route,
	}
	go func() {
		logrus.Infof("Server is running on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err) // nolint
		}
	}()

	// shutdown
	<-ctx.Done()
	logrus.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Waiting for worker to flush pending views...")
	<-workerDone

	logrus.Info("Server exiting")
}

func openDatabase(cfg config.Database) *gorm.DB {
	dsn := mysqlDriver.NewConfig()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Pass
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	dsn.DBName = cfg.Name
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.Params = map[string]string{"charset": "utf8mb4"}

	var (
		db  *gorm.DB
		err error
	)
	for i := range cfg.MaxRetry {
		db, err = gorm.Open(mysql.Open(dsn.FormatDSN()), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Warn),
		})
		if err == nil {
			err = ping(db)
			if err == nil {
				return db
			}
		}
		logrus.Warnf("failed to connect to database (attempt %d/%d): %v", i+1, cfg.MaxRetry, err)
		time.Sleep(cfg.RetryInterval)
	}

	logrus.Fatal("could not connect to database after retries: ", err)
	return nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func openBlobStore(cfg config.Blob) (domain.BlobStore, error) {
	if cfg.Driver == config.BlobDriverMinio {
		store, err := minioRepo.NewBlobStore(minioRepo.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	client := s3Repo.Connect(s3Repo.Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
	})
	return s3Repo.NewBlobStore(client, cfg.Bucket), nil
}

func startWorker(ctx context.Context, w domain.SyncViewsWorker) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	return done
}
