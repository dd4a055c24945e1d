package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/homehelp/homehelp/internal/address"
	"github.com/homehelp/homehelp/internal/auth"
	"github.com/homehelp/homehelp/internal/booking"
	"github.com/homehelp/homehelp/internal/catalog"
	"github.com/homehelp/homehelp/internal/config"
	"github.com/homehelp/homehelp/internal/identity"
	"github.com/homehelp/homehelp/internal/kv"
	"github.com/homehelp/homehelp/internal/logging"
	"github.com/homehelp/homehelp/internal/middleware"
	"github.com/homehelp/homehelp/internal/notification"
	"github.com/homehelp/homehelp/internal/preferences"
	"github.com/homehelp/homehelp/internal/pricing"
)

const (
	codeRequestsPerWindow = 5
	codeRequestWindow     = 15 * time.Minute
	// A verified identifier stays pending long enough to finish registration.
	pendingTTLFactor      = 3
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Email delivers messages to email addresses. Nil keeps them in the log.
	Email notification.Notifier
	// Geocoder overrides the Nominatim client built from Cfg.GeocoderURL.
	Geocoder address.Geocoder
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(logging.Component(d.Logger, "http")))

	RegisterHealthRoutes(app, d)

	// Notifications
	sms := notification.NewLoggerNotifier(logging.Component(d.Logger, "sms"))
	var email notification.Notifier = sms
	if d.Email != nil {
		email = d.Email
	}
	notifier := notification.Router{SMS: sms, Email: email}

	// Storage
	var (
		store        kv.Store
		identityRepo identity.Repository
		catalogRepo  catalog.Repository
		bookingRepo  booking.Repository
		sessions     identity.SessionStore
		pending      identity.PendingStore
		states       auth.StateStore
		codes        identity.CodeIssuer = identity.StaticCodes{}
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		catalogRepo = catalog.NewPostgresRepository(d.DB)
		bookingRepo = booking.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		memCatalog := catalog.NewMemoryRepository()
		catalog.Seed(memCatalog)
		catalogRepo = memCatalog
		bookingRepo = booking.NewMemoryRepository()
	}
	if d.Cache != nil {
		store = kv.NewRedisStore(d.Cache)
		sessions = identity.NewRedisSessionStore(d.Cache, d.Cfg.SessionTTL)
		pending = identity.NewRedisPendingStore(d.Cache, pendingTTLFactor*d.Cfg.OTPTTL)
		states = auth.NewRedisStateStore(d.Cache)
		if d.Cfg.OTPMode == config.OTPModeRedis {
			codes = identity.NewRedisCodes(d.Cache, identity.RedisCodesOptions{
				TTL:         d.Cfg.OTPTTL,
				MaxAttempts: d.Cfg.OTPMaxAttempts,
				Cooldown:    d.Cfg.OTPResendCooldown,
			})
		}
	} else {
		store = kv.NewMemoryStore()
		sessions = identity.NewMemorySessionStore()
		pending = identity.NewMemoryPendingStore()
		states = auth.NewMemoryStateStore()
		if d.Cfg.OTPMode == config.OTPModeRedis {
			d.Logger.Warn("redis unavailable, falling back to the static sign-in code")
		}
	}

	// Services and handlers
	identitySvc := identity.NewService(identity.Options{
		Repository:  identityRepo,
		Codes:       codes,
		Notifier:    notifier,
		Sessions:    sessions,
		Pending:     pending,
		CountryCode: d.Cfg.CountryCode,
		Logger:      logging.Component(d.Logger, "identity"),
	})
	tokens := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.SessionTTL)
	google := auth.NewGoogleProvider(d.Cfg.GoogleClientID, d.Cfg.GoogleClientSecret, d.Cfg.GoogleRedirectURL)
	var googleSignIn identity.GoogleSignIn
	if google != nil {
		googleSignIn = google
	}
	identityHandler := identity.NewHandler(identitySvc, tokens, googleSignIn, states, logging.Component(d.Logger, "identity"))

	geocoder := d.Geocoder
	if geocoder == nil {
		geocoder = address.NewNominatimGeocoder(d.Cfg.GeocoderURL, d.Cfg.AppName)
	}
	addressHandler := address.NewHandler(address.NewRegistry(store, geocoder, logging.Component(d.Logger, "address"), address.RegistryOptions{
		Size: d.Cfg.AddressCacheSize,
		TTL:  d.Cfg.AddressCacheTTL,
	}))

	cat := catalog.NewCatalog(catalogRepo)
	pricingSvc := pricing.NewService(pricing.NewCalculator(), logging.Component(d.Logger, "pricing"))
	bookingSvc := booking.NewService(bookingRepo, cat, pricingSvc.Calculator(), notifier, logging.Component(d.Logger, "booking"))

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("request_id").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	// The OAuth redirect comes from the browser and carries no device header.
	api.Get("/auth/google/callback", identityHandler.GoogleCallback)

	device := api.Group("", middleware.DeviceID())
	requireSession := middleware.SessionAuth(tokens, sessions)

	codeLimit := middleware.CodeRequestLimit(d.Cache, d.Cfg.CountryCode, codeRequestsPerWindow, codeRequestWindow)
	RegisterAuthRoutes(device, identityHandler, codeLimit, middleware.OptionalSession(tokens, sessions), requireSession)
	RegisterAddressRoutes(device, addressHandler)
	RegisterCatalogRoutes(device, catalog.NewHandler(cat), pricing.NewHandler(pricingSvc))
	RegisterBookingRoutes(device, booking.NewHandler(bookingSvc), requireSession,
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, logging.Component(d.Logger, "idempotency")))
	RegisterPreferenceRoutes(device, preferences.NewHandler(preferences.NewStore(store)))

	return nil
}

// pingContext bounds dependency checks made from request handlers.
func pingContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 2*time.Second)
}
