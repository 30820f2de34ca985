// Package routes builds the fiber application and its routing table.
package routes

import (
	"errors"
	"net/http"

	"balance/internal/handlers"
	"balance/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Handlers groups everything SetupRoutes mounts. Metrics may be nil.
type Handlers struct {
	Accounts     *handlers.AccountHandler
	Transactions *handlers.TransactionHandler
	Health       *handlers.HealthHandler
	Metrics      http.Handler
}

// NewApp returns a fiber app with recovery, request ids and request logging
// installed. Unhandled errors are rendered as {"error": message}.
func NewApp(name string, log *zap.Logger, metrics middleware.HTTPMetrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: middleware.RequestIDKey}))
	app.Use(middleware.RequestLogger(log, metrics))
	return app
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", h.Health.Liveness)
	app.Get("/ready", h.Health.Readiness)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics))
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/", h.Accounts.CreateAccount)
	users.Get("/:id", h.Accounts.GetAccount)
	users.Get("/:id/balance", h.Accounts.GetBalance)
	users.Get("/:id/transactions", h.Accounts.ListTransactions)

	transactions := api.Group("/transactions")
	transactions.Post("/", h.Transactions.CreateTransaction)
	transactions.Get("/:uid", h.Transactions.GetTransaction)
}
