package handler

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/MorisHR/HRAPP-sub003/config"
	autherror "github.com/MorisHR/HRAPP-sub003/internal/errors"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/dto"
	"github.com/MorisHR/HRAPP-sub003/internal/identity/service"
	authconstant "github.com/MorisHR/HRAPP-sub003/pkg/constant"
)

const refreshCookieName = "refresh_token"

var validate = validator.New()

type AuthHandler struct {
	authService  *service.AuthService
	tokenService service.TokenGenerator
	cfg          *config.Config
}

func NewAuthHandler(authService *service.AuthService, tokenService service.TokenGenerator, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IPAddress = c.IP()
	input.TenantID = c.Get("X-Tenant-ID")

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		return h.sendError(c, err)
	}

	if result.State == dto.LoginStateAuthenticated {
		h.setRefreshCookie(c, result.Tokens.RefreshToken)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuthHandler) MfaVerify(c *fiber.Ctx) error {
	var input dto.MfaVerifyInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IPAddress = c.IP()

	result, err := h.authService.VerifyMfa(c.Context(), input)
	if err != nil {
		return h.sendError(c, err)
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.Status(fiber.StatusOK).JSON(result)
}

// MfaSetup starts MFA enrollment. The caller proves who it is with the
// setup ticket Login minted, or with a bearer access token when an
// already-authenticated identity enrolls voluntarily. The returned secret
// and backup codes are shown exactly once.
func (h *AuthHandler) MfaSetup(c *fiber.Ctx) error {
	var input dto.MfaSetupInput
	_ = c.BodyParser(&input)

	var identityID string
	switch {
	case input.Ticket != "":
		id, err := h.tokenService.VerifyMfaTicket(input.Ticket, service.MfaTicketPurposeSetup)
		if err != nil {
			return h.sendError(c, autherror.ErrInvalidMfaTicket)
		}
		identityID = id
	default:
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		claims, err := h.tokenService.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		identityID = claims.IdentityID
	}

	result, err := h.authService.BeginMfaSetup(c.Context(), identityID)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuthHandler) MfaCompleteSetup(c *fiber.Ctx) error {
	var input dto.MfaCompleteSetupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IPAddress = c.IP()

	result, err := h.authService.CompleteMfaSetup(c.Context(), input)
	if err != nil {
		if errors.Is(err, autherror.ErrInvalidMfaCode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid code"})
		}
		return h.sendError(c, err)
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input dto.RefreshInput
	// Cookie clients do not send a body at all.
	_ = c.BodyParser(&input)

	if cookie := c.Cookies(refreshCookieName); cookie != "" {
		input.RefreshToken = cookie
	}
	if input.RefreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	input.IPAddress = c.IP()

	tokens, err := h.authService.Refresh(c.Context(), input)
	if err != nil {
		h.clearRefreshCookie(c)
		return h.sendError(c, err)
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	return c.Status(fiber.StatusOK).JSON(tokens)
}

func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	var input dto.RevokeInput
	_ = c.BodyParser(&input)

	if input.RefreshToken == "" {
		input.RefreshToken = c.Cookies(refreshCookieName)
	}
	if input.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing refresh token"})
	}

	input.IPAddress = c.IP()

	if err := h.authService.Revoke(c.Context(), input); err != nil {
		if errors.Is(err, autherror.ErrRefreshTokenNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown refresh token"})
		}
		return h.sendError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) RevokeAll(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if _, err := h.authService.RevokeAll(c.Context(), claims.IdentityID, authconstant.RevocationReasonLogout, c.IP()); err != nil {
		return h.sendError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IdentityID = claims.IdentityID
	input.IPAddress = c.IP()

	result, err := h.authService.ChangePassword(c.Context(), input)
	if err != nil {
		if errors.Is(err, autherror.ErrPasswordRecentlyUsed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return h.sendError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.Status(fiber.StatusOK).JSON(result)
}

// ForgotPassword starts the reset flow. The response is the same whether
// or not the email matched an account; the reset token travels out of band.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input dto.ForgotPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IPAddress = c.IP()
	input.TenantID = c.Get("X-Tenant-ID")

	if _, err := h.authService.ForgotPassword(c.Context(), input); err != nil {
		var limited *autherror.RateLimitedError
		if errors.As(err, &limited) {
			return h.sendError(c, err)
		}
		zap.L().Error("forgot password failed", zap.Error(err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "if the account exists, reset instructions have been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	input.IPAddress = c.IP()

	result, err := h.authService.ResetPassword(c.Context(), input)
	if err != nil {
		if errors.Is(err, autherror.ErrPasswordRecentlyUsed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return h.sendError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.Status(fiber.StatusOK).JSON(result)
}

// Unlock lifts an account lockout (admin only).
func (h *AuthHandler) Unlock(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.authService.Unlock(c.Context(), c.Params("id"), claims.IdentityID); err != nil {
		if errors.Is(err, autherror.ErrIdentityNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "identity not found"})
		}
		return h.sendError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// GetSessions lists an identity's live sessions (admin only).
func (h *AuthHandler) GetSessions(c *fiber.Ctx) error {
	sessions, err := h.authService.ListSessions(c.Context(), c.Params("id"))
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(sessions)
}

// BlacklistRateKey force-denies a rate-limit key ahead of its counter
// (admin only).
func (h *AuthHandler) BlacklistRateKey(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var input dto.BlacklistInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validateInput(&input); err != nil {
		return h.sendError(c, err)
	}

	if err := h.authService.BlacklistRateKey(c.Context(), input, claims.IdentityID); err != nil {
		return h.sendError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// DisableMfa turns an identity's MFA off (admin only, lost authenticator).
func (h *AuthHandler) DisableMfa(c *fiber.Ctx) error {
	claims := claimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.authService.DisableMfa(c.Context(), c.Params("id"), claims.IdentityID); err != nil {
		switch {
		case errors.Is(err, autherror.ErrIdentityNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "identity not found"})
		case errors.Is(err, autherror.ErrMfaNotEnabled):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mfa not enabled"})
		}
		return h.sendError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// ForceLogout revokes every session an identity holds (admin only).
func (h *AuthHandler) ForceLogout(c *fiber.Ctx) error {
	if _, err := h.authService.RevokeAll(c.Context(), c.Params("id"), "revoked by admin", c.IP()); err != nil {
		return h.sendError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// sendError maps the error taxonomy onto status codes. Reuse detection is
// deliberately indistinguishable from any other unauthorized response;
// the distinct signal lives in the server-side logs only.
func (h *AuthHandler) sendError(c *fiber.Ctx, err error) error {
	var locked *autherror.AccountLockedError
	var limited *autherror.RateLimitedError
	var invalid *autherror.ValidationError

	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": invalid.Fields,
		})
	case errors.As(err, &locked):
		c.Set(fiber.HeaderRetryAfter, retryAfterHeader(locked.RetryAfter))
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":      "account temporarily locked",
			"retryAfter": int(math.Ceil(locked.RetryAfter.Seconds())),
		})
	case errors.As(err, &limited):
		c.Set(fiber.HeaderRetryAfter, retryAfterHeader(limited.RetryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":      "too many requests",
			"retryAfter": int(math.Ceil(limited.RetryAfter.Seconds())),
		})
	case errors.Is(err, autherror.ErrInvalidCredentials),
		errors.Is(err, autherror.ErrAccountInactive),
		errors.Is(err, autherror.ErrPasswordExpired),
		errors.Is(err, autherror.ErrInvalidMfaCode),
		errors.Is(err, autherror.ErrInvalidMfaTicket),
		errors.Is(err, autherror.ErrMfaNotEnabled),
		errors.Is(err, autherror.ErrRefreshTokenNotFound),
		errors.Is(err, autherror.ErrRefreshTokenExpired),
		errors.Is(err, autherror.ErrTokenReuseDetected):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, autherror.ErrMfaAlreadyEnabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "mfa already enabled"})
	case errors.Is(err, autherror.ErrResetTokenInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid or expired reset token"})
	case errors.Is(err, autherror.ErrIdentityNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown identity"})
	default:
		zap.L().Error("unhandled error in auth handler", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// setRefreshCookie scopes the cookie to the registrable domain so
// subdomain-per-tenant deployments share it. The raw value is also echoed
// once in the response body for non-cookie clients.
func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/v1",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   h.cfg.RefreshExpiryMin * 60,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &autherror.ValidationError{Fields: fields}
}

func retryAfterHeader(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
