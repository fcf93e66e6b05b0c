package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/staylane/bookings/internal/database"
	"github.com/staylane/bookings/internal/http/handlers"
	"github.com/staylane/bookings/internal/http/middleware"
	"github.com/staylane/bookings/internal/payments"
	"github.com/staylane/bookings/internal/platform/mailer"
	"github.com/staylane/bookings/internal/repo/postgres"
	"github.com/staylane/bookings/internal/service"
	"github.com/staylane/bookings/internal/worker"
	"github.com/staylane/bookings/pkg/config"
	"github.com/staylane/bookings/pkg/events"
	"github.com/staylane/bookings/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.OnboardingRedirectURL)

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	listingRepo := postgres.NewListingRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	orderRepo := postgres.NewOrderRepo(pool)

	authService := service.NewAuthService(userRepo, eventBus, cfg)
	listingService := service.NewListingService(listingRepo, eventBus)
	bookingService := service.NewBookingService(listingRepo, userRepo, orderRepo, gateway, eventBus, cfg)
	payoutService := service.NewPayoutService(userRepo, gateway)

	notifier := worker.NewNotifier(eventBus, mail)
	if err := notifier.Start(); err != nil {
		logger.Error("Failed to start notify worker", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
	})

	h := handlers.New(authService, listingService, bookingService, payoutService, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
