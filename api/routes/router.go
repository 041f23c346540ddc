package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkravchenko/polyclinic-backend/api/controllers"
	"github.com/dkravchenko/polyclinic-backend/api/middleware"
	"github.com/dkravchenko/polyclinic-backend/internal/auth"
	"github.com/dkravchenko/polyclinic-backend/internal/doctors"
	"github.com/dkravchenko/polyclinic-backend/internal/photos"
	"github.com/dkravchenko/polyclinic-backend/internal/users"
	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/db"
	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
	"github.com/dkravchenko/polyclinic-backend/pkg/metrics"
	"github.com/dkravchenko/polyclinic-backend/pkg/redis"
	"github.com/dkravchenko/polyclinic-backend/pkg/storage/fsstore"
)

// NewRouter assembles the HTTP surface. Route shapes mirror the clinic's
// existing clients, so the legacy PascalCase paths are kept as-is.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	photoStore *fsstore.Store,
	registry *prometheus.Registry,
	authMetrics *metrics.AuthMetrics,
	authService auth.Service,
	registerService auth.RegisterService,
	promoteService auth.PromoteService,
	usersService users.Service,
	photosService photos.Service,
	doctorsRepo *doctors.Repository,
) http.Handler {
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
		cfg.AuthRateLimit.LoginAccountLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterAccountLimit,
	)

	maxUpload := photoStore.MaxSize()
	if maxUpload <= 0 {
		maxUpload = int64(cfg.Storage.MaxUploadMB) << 20
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, photoStore))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
		Post("/api/Authorization", controllers.AuthLogin(authService, authMetrics, logg))
	r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
		Post("/api/Registration", controllers.Register(registerService, authMetrics, logg))

	// Photo URLs are shared outside the app, so fetching stays public.
	r.Get("/api/User/{userId}/Photo.jpg", controllers.PhotoFetch(photosService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, authMetrics, logg))

		r.Get("/api/ping", controllers.PrivatePing())
		r.Get("/api/User", controllers.UserProfile(usersService, logg))
		r.Put("/api/User", controllers.UserUpdate(usersService, logg))
		r.Patch("/api/User/Photo", controllers.PhotoUpload(photosService, maxUpload, authMetrics, logg))
		r.Get("/api/Users", controllers.UsersList(usersService, logg))
		r.Get("/api/DoctorPosts", controllers.DoctorPostsList(doctorsRepo, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Post("/api/Registration/Doctor", controllers.RegisterDoctor(promoteService, authMetrics, logg))
			r.Post("/api/Registration/Admin", controllers.RegisterAdmin(promoteService, authMetrics, logg))
		})
	})

	return r
}
