package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atelierhq/repairops-backend/api/controllers"
	"github.com/atelierhq/repairops-backend/api/middleware"
	"github.com/atelierhq/repairops-backend/internal/auth"
	"github.com/atelierhq/repairops-backend/internal/customers"
	"github.com/atelierhq/repairops-backend/internal/inventory"
	"github.com/atelierhq/repairops-backend/internal/invoices"
	"github.com/atelierhq/repairops-backend/internal/parts"
	"github.com/atelierhq/repairops-backend/internal/quotes"
	"github.com/atelierhq/repairops-backend/internal/tickets"
	"github.com/atelierhq/repairops-backend/pkg/auth/session"
	"github.com/atelierhq/repairops-backend/pkg/config"
	"github.com/atelierhq/repairops-backend/pkg/db"
	"github.com/atelierhq/repairops-backend/pkg/enums"
	"github.com/atelierhq/repairops-backend/pkg/logger"
	"github.com/atelierhq/repairops-backend/pkg/redis"
)

// Services bundles everything the HTTP surface exposes.
type Services struct {
	Auth      auth.Service
	Tickets   tickets.Service
	Parts     parts.Service
	Inventory inventory.Service
	Invoices  invoices.Service
	Quotes    quotes.Service
	Customers customers.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	svcs Services,
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
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	loginLimiter := middleware.AuthRateLimit(loginPolicy, nil, logg)
	var cachePinger redis.Pinger
	if redisClient != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		cachePinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, cachePinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", controllers.TicketCreate(svcs.Tickets, logg))
			r.Get("/", controllers.TicketList(svcs.Tickets, logg))
			r.Route("/{ticketId}", func(r chi.Router) {
				r.Get("/", controllers.TicketDetail(svcs.Tickets, logg))
				r.Get("/history", controllers.TicketHistory(svcs.Tickets, logg))
				r.Get("/transitions", controllers.TicketTransitions(svcs.Tickets, logg))
				r.Post("/transition", controllers.TicketTransition(svcs.Tickets, logg))
				r.Post("/parts", controllers.TicketConsumePart(svcs.Parts, logg))
				r.Get("/parts", controllers.TicketParts(svcs.Parts, logg))
				r.Post("/quote", controllers.TicketQuotePrepare(svcs.Quotes, logg))
				r.Get("/quotes", controllers.TicketQuotes(svcs.Quotes, logg))
			})
		})

		r.Post("/quotes/{quoteId}/decision", controllers.QuoteDecision(svcs.Quotes, logg))

		r.Route("/stock", func(r chi.Router) {
			r.Post("/items", controllers.StockItemCreate(svcs.Inventory, logg))
			r.Get("/items", controllers.StockItemList(svcs.Inventory, logg))
			r.Patch("/items/{itemId}", controllers.StockItemUpdate(svcs.Inventory, logg))
			r.Get("/items/{itemId}/movements", controllers.StockItemMovements(svcs.Inventory, logg))
			r.Get("/items/{itemId}/balance", controllers.StockItemBalance(svcs.Inventory, logg))
			r.Post("/movements", controllers.StockMovementCreate(svcs.Inventory, logg))
			r.Get("/critical", controllers.StockCritical(svcs.Inventory, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(svcs.Customers, logg))
			r.Get("/", controllers.CustomerList(svcs.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerDetail(svcs.Customers, logg))
				r.Post("/devices", controllers.CustomerRegisterDevice(svcs.Customers, logg))
				r.Get("/devices", controllers.CustomerDevices(svcs.Customers, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", controllers.InvoiceCompose(svcs.Invoices, logg))
			r.Get("/", controllers.InvoiceList(svcs.Invoices, logg))
			r.Get("/{invoiceId}", controllers.InvoiceDetail(svcs.Invoices, logg))
			r.With(middleware.RequireRole(enums.UserRoleOwner.String(), logg)).
				Patch("/{invoiceId}/payment-status", controllers.InvoicePaymentStatus(svcs.Invoices, logg))
		})
	})

	return r
}
