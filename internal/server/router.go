// Package server assembles the HTTP routes of the capsule API.
package server

import (
	"context"
	"net/http"

	"github.com/dimitrije/capsule-api/internal/handlers"
	"github.com/dimitrije/capsule-api/internal/logging"
	authmw "github.com/dimitrije/capsule-api/internal/middleware"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

type Handlers struct {
	Capsules *handlers.CapsuleHandler
	Items    *handlers.ItemHandler
	Vault    *handlers.VaultHandler
}

type Options struct {
	Production bool
	Validator  authmw.TokenValidator
	Log        logging.Logger
	// HealthCheck reports whether backing stores are reachable. Nil means
	// always healthy.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(opts Options, h Handlers) http.Handler {
	app := drift.New()

	if opts.Production {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	if opts.Log != nil {
		app.Use(authmw.RequestLog(opts.Log))
	}

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(c.Request.Context()); err != nil {
				_ = c.JSON(503, map[string]string{"status": "unavailable"})
				return
			}
		}
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(authmw.Auth(opts.Validator))

	protected.Get("/capsules", h.Capsules.List)
	protected.Post("/capsules", h.Capsules.Create)
	protected.Post("/invites/join", h.Capsules.Join)
	protected.Get("/capsules/:capsuleId", h.Capsules.Get)
	protected.Post("/capsules/:capsuleId/dissolve", h.Capsules.Dissolve)
	protected.Post("/capsules/:capsuleId/invite-email", h.Capsules.SendInviteEmail)
	protected.Get("/capsules/:capsuleId/counts", h.Capsules.Counts)

	protected.Get("/capsules/:capsuleId/items", h.Items.List)
	protected.Post("/capsules/:capsuleId/items", h.Items.Create)
	protected.Get("/items/:itemId", h.Items.Get)
	protected.Post("/items/:itemId/vote", h.Items.Vote)
	protected.Post("/items/:itemId/resolve", h.Items.MoveToResolve)
	protected.Post("/items/:itemId/perspective", h.Items.SubmitPerspective)
	protected.Post("/items/:itemId/decision", h.Items.MoveToDecision)
	protected.Post("/items/:itemId/confirm", h.Items.Confirm)
	protected.Post("/items/:itemId/complete", h.Items.Complete)
	protected.Post("/items/:itemId/archive", h.Items.Archive)

	protected.Get("/capsules/:capsuleId/vault", h.Vault.List)
	protected.Post("/capsules/:capsuleId/vault", h.Vault.Upload)
	protected.Post("/capsules/:capsuleId/vault/upload-url", h.Vault.UploadURL)
	protected.Get("/vault/:itemId", h.Vault.Get)
	protected.Post("/vault/:itemId/approve", h.Vault.Approve)
	protected.Post("/vault/:itemId/reject", h.Vault.Reject)
	protected.Get("/vault/:itemId/download-url", h.Vault.DownloadURL)

	return app
}
