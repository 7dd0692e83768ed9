package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/config"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/bunx"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/graph"
	chamfermiddleware "github.com/seemspyo/chamfer/cmd/chamferapi/internal/middleware"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/migrations"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/ratelimit"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/server"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/content"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/inference"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/upload"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/users"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/services/validation"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/telemetry"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=..."
var version = "dev"

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Chamfer API server",
	Long:  `Starts the HTTP server exposing the GraphQL API, the signing key set and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Connect to database
		db, err := bunx.NewDBWithOptions(cfg.DatabaseURL, bunx.Options{MaxOpenConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		if migrateOnStart {
			if err := migrateUp(ctx, db); err != nil {
				return err
			}
		}

		cipher, err := newCipher(cfg)
		if err != nil {
			return err
		}

		var (
			collector      *telemetry.Collector
			metricsHandler http.Handler
			serverMetrics  *telemetry.ServerMetrics
			authMetrics    *telemetry.AuthMetrics
		)
		strategyOpts := []auth.StrategyOption{
			auth.WithDomain(cfg.Domain),
			auth.WithTokenTTL(cfg.TokenTTL),
			auth.WithCacheSize(cfg.TokenCacheSize),
		}
		if cfg.MetricsEnabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector = telemetry.NewCollector(reg)
			metricsHandler = telemetry.Handler(reg)
			strategyOpts = append(strategyOpts, auth.WithObserver(collector.RecordCredential))

			if serverMetrics, err = telemetry.NewServerMetrics(); err != nil {
				return fmt.Errorf("failed to create server metrics: %w", err)
			}
			if authMetrics, err = telemetry.NewAuthMetrics(); err != nil {
				return fmt.Errorf("failed to create auth metrics: %w", err)
			}
		}

		strategy, err := auth.NewStrategy(cipher, strategyOpts...)
		if err != nil {
			return fmt.Errorf("failed to create auth strategy: %w", err)
		}
		gate, err := auth.NewGate(graph.Policies)
		if err != nil {
			return fmt.Errorf("failed to create authorization gate: %w", err)
		}

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		uploadLogRepo := repository.NewBunUploadLogRepository(db)

		validator, err := validation.NewSchemaValidator(cfg.SchemaCacheSize)
		if err != nil {
			return fmt.Errorf("failed to create schema validator: %w", err)
		}

		// Initialize services
		userSvc := users.NewService(userRepo, cipher)
		contentSvc := content.NewService(content.Repositories{
			Articles: repository.NewBunArticleRepository(db),
			Products: repository.NewBunProductRepository(db),
			Banners:  repository.NewBunBannerRepository(db),
			Photos:   repository.NewBunPhotoRepository(db),
			JSONData: repository.NewBunJSONDataRepository(db),
		}).
			WithSchemaValidator(validator).
			WithInferrer(inference.NewInferrer())

		uploadCfg := upload.Config{}
		var putter upload.ObjectPutter
		if cfg.S3 != nil {
			uploadCfg = upload.Config{
				AccessKey: cfg.S3.AccessKey,
				SecretKey: cfg.S3.SecretKey,
				Region:    cfg.S3.Region,
				Bucket:    cfg.S3.Bucket,
				Endpoint:  cfg.S3.Endpoint,
				OriginAlt: cfg.S3.OriginAlt,
			}
			client, err := upload.NewS3Client(ctx, uploadCfg)
			if err != nil {
				return fmt.Errorf("failed to create s3 client: %w", err)
			}
			putter = client
			log.Printf("Uploads enabled (bucket %s)", uploadCfg.Bucket)
		} else {
			log.Printf("Uploads disabled: s3 access_key, secret_key and bucket are not all set")
		}
		uploadSvc := upload.NewService(uploadLogRepo, putter, uploadCfg)

		if cfg.Deus != nil {
			created, err := userSvc.EnsureMaster(ctx, cfg.Deus.Email, cfg.Deus.Username, cfg.Deus.Password)
			if err != nil {
				return fmt.Errorf("failed to bootstrap master account: %w", err)
			}
			if created {
				log.Printf("Master account %s created", cfg.Deus.Username)
			}
		}

		limiter := ratelimit.New(ratelimit.Config{
			PerMinute: cfg.RateLimit.SignInPerMinute,
			Burst:     cfg.RateLimit.Burst,
		})
		defer limiter.Stop()

		resolver, err := graph.NewResolver(graph.Options{
			Version:       version,
			Cipher:        cipher,
			Strategy:      strategy,
			Gate:          gate,
			DB:            db,
			Users:         userSvc,
			Content:       contentSvc,
			Uploads:       uploadSvc,
			SignInLimiter: limiter,
			Collector:     collector,
			AuthMetrics:   authMetrics,
		})
		if err != nil {
			return fmt.Errorf("failed to create resolver: %w", err)
		}
		schema, err := graph.NewSchema(resolver)
		if err != nil {
			return fmt.Errorf("failed to parse graphql schema: %w", err)
		}

		var recorder graph.ErrorRecorder
		if collector != nil {
			recorder = collector
		}

		h := server.NewH2CHandler(server.RouterOptions{
			GraphQL:        graph.NewHandler(schema, recorder),
			GraphQLPath:    cfg.GraphQLPath,
			Strategy:       strategy,
			Hydrator:       chamfermiddleware.NewHydrator(userRepo),
			Cipher:         cipher,
			WhiteList:      cfg.WhiteList,
			Metrics:        serverMetrics,
			MetricsHandler: metricsHandler,
			HealthHandler:  server.HandleHealth(db, uploadSvc.Enabled()),
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting Chamfer API server %s on %s", version, cfg.ServerAddr)
			log.Printf("GraphQL endpoint: %s", cfg.GraphQLPath)
			serverErrors <- srv.ListenAndServe()
		}()

		// Wait for interrupt signal
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			log.Printf("Received signal %v, starting graceful shutdown", sig)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("WARNING: graceful shutdown failed: %v", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to close server: %w", err)
				}
			}
			log.Printf("Server stopped")
		}

		return nil
	},
}

// newCipher loads the signing key from signing_key_path when set.
func newCipher(cfg *config.Config) (*auth.Cipher, error) {
	var opts []auth.CipherOption
	if cfg.SigningKeyPath != "" {
		data, err := os.ReadFile(cfg.SigningKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}
		opts = append(opts, auth.WithPrivateKeyPEM(data))
	} else {
		log.Printf("WARNING: signing_key_path not set, issued tokens will not survive a restart")
	}

	cipher, err := auth.NewCipher(cfg.APISecret, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher, nil
}

func migrateUp(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			log.Printf("WARNING: failed to release migration lock: %v", err)
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if group.ID == 0 {
		log.Printf("No new migrations to apply")
	} else {
		log.Printf("Applied migration group %d", group.ID)
	}
	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}
