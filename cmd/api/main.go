package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/staymate-io/staymate-backend/api/routes"
	"github.com/staymate-io/staymate-backend/internal/auth"
	"github.com/staymate-io/staymate-backend/internal/bookings"
	"github.com/staymate-io/staymate-backend/internal/hostels"
	"github.com/staymate-io/staymate-backend/internal/media"
	"github.com/staymate-io/staymate-backend/internal/mess"
	"github.com/staymate-io/staymate-backend/internal/notifications"
	"github.com/staymate-io/staymate-backend/internal/reviews"
	"github.com/staymate-io/staymate-backend/internal/subscriptions"
	"github.com/staymate-io/staymate-backend/internal/users"
	"github.com/staymate-io/staymate-backend/pkg/auth/session"
	"github.com/staymate-io/staymate-backend/pkg/config"
	"github.com/staymate-io/staymate-backend/pkg/db"
	"github.com/staymate-io/staymate-backend/pkg/logger"
	"github.com/staymate-io/staymate-backend/pkg/migrate"
	"github.com/staymate-io/staymate-backend/pkg/outbox"
	"github.com/staymate-io/staymate-backend/pkg/redis"
	"github.com/staymate-io/staymate-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	hostelService, err := hostels.NewService(hostels.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create hostels service", err)
		os.Exit(1)
	}

	messService, err := mess.NewService(mess.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create mess service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(
		bookings.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		bookings.NewBedAllocator(),
		cfg.Booking.PendingTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(
		subscriptions.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(
		media.NewRepository(dbClient.DB()),
		gcsClient,
		cfg.GCS.BucketName,
		cfg.GCS.UploadURLExpiry,
		cfg.GCS.DownloadURLExpiry,
		cfg.Media.MaxUploadMB,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			Hostels:       hostelService,
			Mess:          messService,
			Bookings:      bookingService,
			Subscriptions: subscriptionService,
			Reviews:       reviewService,
			Notifications: notificationService,
			Media:         mediaService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
