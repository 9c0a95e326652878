package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/api/http/handlers"
	"github.com/spec-kit/game-rental-service/internal/auth"
	"github.com/spec-kit/game-rental-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Games    *handlers.GamesHandler
	Payments *handlers.PaymentsHandler
	Admins   *handlers.AdminsHandler
	Tokens   *auth.TokenManager
}

// RegisterRoutes wires HTTP routes. Role requirements live here, next to
// the paths they guard; per-target rules stay in the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	// Login and registration.
	api.Post("/login", cfg.Auth.Login)
	api.Post("/login/auth",
		auth.RequireExact(cfg.Tokens, domain.RolePartiallyLoggedIn),
		cfg.Auth.ConfirmSecondFactor)
	api.Post("/register", cfg.Auth.Register)
	api.Post("/register/temporary", cfg.Auth.RegisterTemporary)
	api.Post("/register/temporary/send-code", cfg.Auth.SendTempVerification)
	api.Post("/register/convert-temp", cfg.Auth.ConvertTemporary)

	// Unauthenticated recovery.
	api.Post("/password-reset/request", cfg.Users.RequestPasswordReset)
	api.Post("/password-reset/confirm", cfg.Users.ConfirmPasswordReset)

	// The authenticated user's own account.
	me := api.Group("/users/me", auth.Require(cfg.Tokens, domain.RoleUser))
	me.Get("", cfg.Users.Me)
	me.Patch("", cfg.Users.UpdateMe)
	me.Post("/password/request", cfg.Users.RequestPasswordChange)
	me.Post("/password/confirm", cfg.Users.ConfirmPasswordChange)
	me.Post("/email/request", cfg.Users.RequestEmailChange)
	me.Post("/email/confirm", cfg.Users.ConfirmEmailChange)
	me.Post("/2fa/enable/request", cfg.Users.RequestEnableMFA)
	me.Post("/2fa/enable/confirm", cfg.Users.ConfirmEnableMFA)
	me.Post("/2fa/disable/request", cfg.Users.RequestDisableMFA)
	me.Post("/2fa/disable/confirm", cfg.Users.ConfirmDisableMFA)
	me.Get("/orders", cfg.Users.Orders)

	// Catalog: reads are public, reviews need a login, edits need a
	// moderator.
	api.Get("/games", cfg.Games.List)
	api.Get("/games/:id", cfg.Games.Get)
	api.Get("/games/:id/feedback", cfg.Games.ListFeedback)
	api.Post("/games/:id/feedback",
		auth.Require(cfg.Tokens, domain.RoleUser),
		cfg.Games.CreateFeedback)
	api.Post("/games/:id/change-requests",
		auth.Require(cfg.Tokens, domain.RoleSupportModerator),
		cfg.Games.SubmitChangeRequest)

	// Purchases and rented-account access.
	payments := api.Group("/payments", auth.Require(cfg.Tokens, domain.RoleUser))
	payments.Post("/intent", cfg.Payments.CreateIntent)
	payments.Post("/complete", cfg.Payments.CompletePurchase)

	accounts := api.Group("/accounts", auth.Require(cfg.Tokens, domain.RoleUser))
	accounts.Post("/:account_id/guard-code", cfg.Payments.RequestGuardCode)
	accounts.Get("/:account_id/guard-code", cfg.Payments.GuardCode)

	// Privileged surface.
	admins := api.Group("/admins/me", auth.Require(cfg.Tokens, domain.RoleAdmin))
	admins.Patch("/roles", cfg.Admins.PatchRole)
	admins.Get("/change-requests", cfg.Admins.ListChangeRequests)
	admins.Post("/change-requests/:id/approve", cfg.Admins.ApproveChangeRequest)
	admins.Post("/change-requests/:id/reject", cfg.Admins.RejectChangeRequest)
	admins.Get("/guard-codes", cfg.Admins.ListGuardRequests)
	admins.Post("/guard-codes/:account_id", cfg.Admins.SetGuardCode)
}
