package handler

import (
	"github.com/gofiber/fiber/v2"

	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

// RegisterRoutes wires the credential and session endpoints under /api/v1.
func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	v1 := app.Group("/api/v1")

	v1.Post("/login", h.Login)
	v1.Post("/mfa/verify", h.MfaVerify)
	v1.Post("/mfa/setup", h.MfaSetup)
	v1.Post("/mfa/complete-setup", h.MfaCompleteSetup)
	v1.Post("/refresh", h.Refresh)
	v1.Post("/revoke", h.Revoke)
	v1.Post("/forgot-password", h.ForgotPassword)
	v1.Post("/reset-password", h.ResetPassword)

	authed := v1.Group("", RequireAuth(h.tokenService))
	authed.Post("/revoke-all", h.RevokeAll)
	authed.Post("/change-password", h.ChangePassword)

	admin := v1.Group("/admin", RequireAuth(h.tokenService), RequireRole(authconstant.RoleAdmin))
	admin.Post("/identities/:id/unlock", h.Unlock)
	admin.Get("/identities/:id/sessions", h.GetSessions)
	admin.Post("/identities/:id/force-logout", h.ForceLogout)
	admin.Post("/identities/:id/mfa/disable", h.DisableMfa)
	admin.Post("/ratelimit/blacklist", h.BlacklistRateKey)
}
