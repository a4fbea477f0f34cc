package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/vitrinezap/api/internal/di"
	"github.com/vitrinezap/api/internal/handlers"
	"github.com/vitrinezap/api/internal/messaging"
	"github.com/vitrinezap/api/internal/platform/addresslookup"
	"github.com/vitrinezap/api/internal/platform/auth"
	"github.com/vitrinezap/api/internal/platform/config"
	pfirestore "github.com/vitrinezap/api/internal/platform/firestore"
	"github.com/vitrinezap/api/internal/platform/jobs"
	"github.com/vitrinezap/api/internal/platform/observability"
	"github.com/vitrinezap/api/internal/repositories"
	firestoreRepo "github.com/vitrinezap/api/internal/repositories/firestore"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	var eventPublisher *jobs.PubSubOrderEventPublisher
	var pubsubClient *pubsub.Client
	if cfg.Features.EnableOrderEvents {
		if host := strings.TrimSpace(cfg.PubSub.EmulatorHost); host != "" {
			_ = os.Setenv("PUBSUB_EMULATOR_HOST", host)
		}
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.PubSub.OrderEventsTopic)
		eventPublisher, err = jobs.NewPubSubOrderEventPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise order event publisher", zap.Error(err))
		}
	}

	healthRepo, err := newHealthRepository(firestoreClient, pubsubClient, cfg)
	if err != nil {
		logger.Warn("health: dependency checks not configured", zap.Error(err))
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider, healthRepo)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	lookupClient, err := addresslookup.NewClient(cfg.AddressLookup)
	if err != nil {
		logger.Fatal("failed to initialise address lookup client", zap.Error(err))
	}

	containerOpts := []di.ContainerOption{
		di.WithAddressResolver(lookupClient),
		di.WithVersion(version),
	}
	if eventPublisher != nil {
		containerOpts = append(containerOpts, di.WithOrderEvents(eventPublisher))
	}
	container, err := di.NewContainer(ctx, cfg, registry, containerOpts...)
	if err != nil {
		logger.Fatal("failed to build service container", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier, auth.WithUserGetter(firebaseVerifier))

	var whatsapp *messaging.WhatsAppLinkBuilder
	if strings.TrimSpace(cfg.Store.WhatsAppNumber) != "" {
		whatsapp, err = messaging.NewWhatsAppLinkBuilder(cfg.Store.WhatsAppNumber, cfg.Store.WhatsAppCountryCode, cfg.Store.Name)
		if err != nil {
			logger.Fatal("failed to initialise whatsapp link builder", zap.Error(err))
		}
	} else {
		logger.Warn("store whatsapp number not configured; order links disabled")
	}

	meHandlers := handlers.NewMeHandlers(authenticator, container.Services.Users)
	cartHandlers := handlers.NewCartHandlers(authenticator, container.Services.Cart)
	checkoutHandlers := handlers.NewCheckoutHandlers(authenticator, container.Services.Checkout)
	orderHandlers := handlers.NewOrderHandlers(authenticator, container.Services.Orders, whatsapp)
	cepHandlers := handlers.NewCEPHandlers(lookupClient)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthVersion(version),
		handlers.WithHealthEnvironment(cfg.Environment),
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithHealthSystemService(container.Services.System),
	)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}
	if cfg.RateLimits.DefaultPerMinute > 0 {
		middlewares = append(middlewares, handlers.RateLimitMiddleware(
			cfg.RateLimits.DefaultPerMinute,
			cfg.RateLimits.AuthenticatedPerMinute,
			time.Minute,
		))
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithCEPRoutes(cepHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("vitrinezap api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newHealthRepository(client *firestore.Client, pubsubClient *pubsub.Client, cfg config.Config) (repositories.HealthRepository, error) {
	checks := make([]repositories.DependencyCheck, 0, 2)
	if client != nil {
		c := client
		checks = append(checks, repositories.DependencyCheck{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Check: func(ctx context.Context) error {
				iter := c.Collections(ctx)
				_, err := iter.Next()
				if errors.Is(err, iterator.Done) {
					return nil
				}
				return err
			},
		})
	}
	if pubsubClient != nil {
		topicID := cfg.PubSub.OrderEventsTopic
		pc := pubsubClient
		checks = append(checks, repositories.DependencyCheck{
			Name:    "pubsub",
			Timeout: time.Second,
			Check: func(ctx context.Context) error {
				_, err := pc.Topic(topicID).Exists(ctx)
				return err
			},
		})
	}
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	return repositories.NewDependencyHealthRepository(checks)
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
