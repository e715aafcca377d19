package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/docaccess"
	"storefront/internal/funnel"
	"storefront/internal/handlers"
	"storefront/internal/insights"
	"storefront/internal/logging"
	"storefront/internal/storage"
)

const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			lg.Warn("mongo disconnect", zap.Error(err))
		}
	}()

	db := client.Database(cfg.DBName)
	lg.Info("mongo connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(ctx, db, lg); err != nil {
		lg.Warn("index setup incomplete", zap.Error(err))
	}

	accounts := database.NewAccountRepository(db)
	admins := database.NewAdminRepository(db)
	products := database.NewProductRepository(db)
	applications := database.NewApplicationRepository(db)
	events := database.NewFunnelEventRepository(db)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL)
	guard := auth.NewGuard(tokens, admins, lg.Named("auth"))

	objects, err := storage.NewLocal(cfg.DocumentsDir, cfg.Buckets()...)
	if err != nil {
		return errors.Wrap(err, "open document storage")
	}
	signer := storage.NewURLSigner(cfg.SignedURLSecret, cfg.PublicBaseURL)

	checkoutLog := lg.Named("checkout")
	store := checkout.NewStore(cfg.CheckoutSessionTTL, checkout.DiscardUploads(objects, checkoutLog))
	checkoutSvc := checkout.NewService(store, products, applications, objects, cfg.DocumentsBucket, checkoutLog)

	chat, err := insights.NewChatClient(insights.ChatConfig{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "configure insights client")
	}

	router := handlers.NewRouter(handlers.Deps{
		Logger: lg,
		Health: handlers.PingerFunc(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		Accounts:     accounts,
		Tokens:       tokens,
		Guard:        guard,
		Documents:    docaccess.NewGateway(guard, objects, signer, cfg.Buckets(), cfg.SignedURLTTL, lg.Named("documents")),
		Objects:      objects,
		URLVerifier:  signer,
		Funnel:       funnel.NewRecorder(events, lg.Named("funnel")),
		Metrics:      funnel.NewAggregator(events, lg.Named("funnel")),
		Insights:     insights.NewAnalyzer(chat, nil, lg.Named("insights")),
		Products:     products,
		Checkout:     checkoutSvc,
		Applications: applications,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(gctx, sessionSweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
