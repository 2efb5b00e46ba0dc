package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fleetworks/fleetworks/internal/adapter/cache"
	httpadapter "github.com/fleetworks/fleetworks/internal/adapter/http"
	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/config"
	"github.com/fleetworks/fleetworks/internal/ports"
	"github.com/fleetworks/fleetworks/internal/service/jwtauth"
	"github.com/fleetworks/fleetworks/internal/service/password"
	"github.com/fleetworks/fleetworks/internal/service/taxonomy"
	"github.com/fleetworks/fleetworks/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	}).Info("starting compliance engine")

	repos, dbCloser, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}
	if dbCloser != nil {
		defer dbCloser()
	}

	var ruleCache ports.RuleCache = cache.NoopRuleCache{}
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisRuleCache(cfg.Redis.URL, cfg.Redis.TTL, logger)
		if err != nil {
			logger.WithError(err).Warn("rule cache unavailable, continuing without caching")
		} else {
			ruleCache = redisCache
			logger.WithField("ttl", cfg.Redis.TTL.String()).Info("rule cache enabled")
		}
	}

	tokenService, err := jwtauth.NewJWTService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	if err != nil {
		logger.Fatalf("failed to initialize token service: %v", err)
	}
	passwordService := password.NewBcryptService(cfg.Security.BcryptCost)
	codeResolver := taxonomy.NewStaticCodeResolver(taxonomy.DefaultComponentCodes())

	authUseCase := usecase.NewAuthUseCase(repos.inspectors, tokenService, passwordService)
	sourceUseCase := usecase.NewSourceUseCase(repos.sources)
	versionUseCase := usecase.NewVersionUseCase(repos.versions, repos.sources, repos.changeLog, codeResolver, ruleCache)
	inspectionUseCase := usecase.NewInspectionUseCase(repos.versions, repos.inspections, repos.findings, repos.changeLog, repos.inspectors, ruleCache)
	auditUseCase := usecase.NewAuditUseCase(repos.changeLog)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		logger,
		tokenService,
		authUseCase,
		sourceUseCase,
		versionUseCase,
		inspectionUseCase,
		auditUseCase,
	)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
	logger.Info("server exited")
}

type repositories struct {
	sources     ports.SourceRepository
	versions    ports.VersionRepository
	inspections ports.InspectionRepository
	findings    ports.FindingRepository
	changeLog   ports.ChangeLogRepository
	inspectors  ports.InspectorRepository
}

// buildRepositories connects Postgres when DATABASE_URL is set, and
// falls back to in-memory repositories for demos and local development
func buildRepositories(cfg *config.Config, logger *logrus.Logger) (*repositories, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return &repositories{
			sources:     persistence.NewMemorySourceRepository(),
			versions:    persistence.NewMemoryVersionRepository(),
			inspections: persistence.NewMemoryInspectionRepository(),
			findings:    persistence.NewMemoryFindingRepository(),
			changeLog:   persistence.NewMemoryChangeLogRepository(),
			inspectors:  persistence.NewMemoryInspectorRepository(),
		}, nil, nil
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("database connection established")

	return &repositories{
		sources:     persistence.NewPostgresSourceRepository(db),
		versions:    persistence.NewPostgresVersionRepository(db),
		inspections: persistence.NewPostgresInspectionRepository(db),
		findings:    persistence.NewPostgresFindingRepository(db),
		changeLog:   persistence.NewPostgresChangeLogRepository(db),
		inspectors:  persistence.NewPostgresInspectorRepository(db),
	}, func() { db.Close() }, nil
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
