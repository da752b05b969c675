package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staymate-io/staymate-backend/api/controllers"
	"github.com/staymate-io/staymate-backend/api/middleware"
	"github.com/staymate-io/staymate-backend/internal/auth"
	"github.com/staymate-io/staymate-backend/internal/bookings"
	"github.com/staymate-io/staymate-backend/internal/hostels"
	"github.com/staymate-io/staymate-backend/internal/media"
	"github.com/staymate-io/staymate-backend/internal/mess"
	"github.com/staymate-io/staymate-backend/internal/notifications"
	"github.com/staymate-io/staymate-backend/internal/reviews"
	"github.com/staymate-io/staymate-backend/internal/subscriptions"
	"github.com/staymate-io/staymate-backend/pkg/auth/session"
	"github.com/staymate-io/staymate-backend/pkg/config"
	"github.com/staymate-io/staymate-backend/pkg/db"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/logger"
	"github.com/staymate-io/staymate-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services groups the domain services the router exposes over HTTP.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Hostels       hostels.Service
	Mess          mess.Service
	Bookings      bookings.Service
	Subscriptions subscriptions.Service
	Reviews       reviews.Service
	Notifications notifications.Service
	Media         media.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	// A nil *redis.Client must stay nil once it becomes an interface,
	// otherwise the middleware nil checks stop short-circuiting.
	var idemStore redis.IdempotencyStore
	var redisPinger redis.Pinger
	var rateStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	if redisClient != nil {
		idemStore = redisClient
		redisPinger = redisClient
		rateStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))

		r.Route("/hostels", func(r chi.Router) {
			r.Get("/", controllers.HostelSearch(svcs.Hostels, logg))
			r.Get("/{hostelId}", controllers.HostelDetail(svcs.Hostels, logg))
			r.Get("/{hostelId}/rooms", controllers.RoomList(svcs.Hostels, logg))
			r.Get("/{propertyId}/reviews", controllers.PropertyReviews(svcs.Reviews, enums.PropertyKindHostel, logg))
		})
		r.Route("/mess-services", func(r chi.Router) {
			r.Get("/", controllers.MessSearch(svcs.Mess, logg))
			r.Get("/{messId}", controllers.MessDetail(svcs.Mess, logg))
			r.Get("/{propertyId}/reviews", controllers.PropertyReviews(svcs.Reviews, enums.PropertyKindMess, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.RateLimit())

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/bookings", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.UserRoleStudent), logg)).Post("/", controllers.BookingCreate(svcs.Bookings, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleStudent), logg)).Get("/", controllers.StudentBookings(svcs.Bookings, svcs.Subscriptions, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleStudent), logg)).Delete("/{bookingId}", controllers.BookingCancel(svcs.Bookings, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleHostelOwner), logg)).Put("/{bookingId}/status", controllers.BookingDecision(svcs.Bookings, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleHostelOwner), logg)).Get("/owner", controllers.OwnerBookings(svcs.Bookings, logg))
		})

		r.Route("/v1/mess-subscriptions", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.UserRoleStudent), logg)).Post("/", controllers.SubscriptionCreate(svcs.Subscriptions, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleStudent), logg)).Get("/", controllers.StudentSubscriptions(svcs.Subscriptions, logg))
			r.With(middleware.RequireAnyRole(logg, string(enums.UserRoleStudent), string(enums.UserRoleMessOwner))).
				Delete("/{subscriptionId}", controllers.SubscriptionCancel(svcs.Subscriptions, logg))
		})

		r.Route("/v1/hostels", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleHostelOwner), logg))
			r.Post("/", controllers.HostelCreate(svcs.Hostels, logg))
			r.Get("/mine", controllers.OwnerHostels(svcs.Hostels, logg))
			r.Put("/{hostelId}", controllers.HostelUpdate(svcs.Hostels, logg))
			r.Delete("/{hostelId}", controllers.HostelDelete(svcs.Hostels, logg))
			r.Post("/{hostelId}/rooms", controllers.RoomCreate(svcs.Hostels, logg))
		})
		r.With(middleware.RequireRole(string(enums.UserRoleHostelOwner), logg)).
			Patch("/v1/rooms/{roomId}", controllers.RoomUpdate(svcs.Hostels, logg))
		r.With(middleware.RequireRole(string(enums.UserRoleHostelOwner), logg)).
			Delete("/v1/rooms/{roomId}", controllers.RoomDelete(svcs.Hostels, logg))

		r.Route("/v1/mess-services", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleMessOwner), logg))
			r.Post("/", controllers.MessCreate(svcs.Mess, logg))
			r.Get("/mine", controllers.OwnerMesses(svcs.Mess, logg))
			r.Put("/{messId}", controllers.MessUpdate(svcs.Mess, logg))
			r.Delete("/{messId}", controllers.MessDelete(svcs.Mess, logg))
			r.Get("/{messId}/subscribers", controllers.MessSubscribers(svcs.Mess, logg))
		})

		r.Route("/v1/media", func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, string(enums.UserRoleHostelOwner), string(enums.UserRoleMessOwner)))
			r.Post("/upload-url", controllers.MediaPresignUpload(svcs.Media, logg))
			r.Get("/download-url", controllers.MediaPresignDownload(svcs.Media, logg))
		})

		r.Route("/v1/reviews", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleStudent), logg))
			r.Post("/", controllers.ReviewSubmit(svcs.Reviews, logg))
			r.Delete("/{reviewId}", controllers.ReviewDelete(svcs.Reviews, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
