package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/identity"
	"github.com/terraincognita07/patientlog/internal/models"
	"github.com/terraincognita07/patientlog/internal/services"
	"go.uber.org/zap"
)

type loginInput struct {
	AccessToken string `json:"access_token" form:"access_token"`
	RememberMe  bool   `json:"remember_me" form:"remember_me"`
}

type sessionResponse struct {
	User          models.User `json:"user"`
	ProfileExists bool        `json:"profile_exists"`
}

// Login exchanges a provider access token for a session cookie.
func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginFailureLimit, loginFailureWindow) {
		return handler.apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	var input loginInput
	if err := c.BodyParser(&input); err != nil {
		return handler.apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	claims, err := handler.verifier.Verify(c.UserContext(), input.AccessToken)
	switch {
	case errors.Is(err, identity.ErrTokenEmpty):
		return handler.apiError(c, fiber.StatusBadRequest, identity.ErrTokenEmpty.Error())
	case errors.Is(err, identity.ErrUnauthorized):
		handler.loginLimiter.addFailure(limiterKey, now, loginFailureWindow)
		return handler.apiError(c, fiber.StatusUnauthorized, "invalid access token")
	case err != nil:
		handler.logger.Warn("identity verification failed", zap.String("request_id", requestID(c)), zap.Error(err))
		return handler.apiError(c, fiber.StatusBadGateway, "identity provider unavailable")
	}

	user, err := handler.authService.SignIn(claims.Subject, claims.Email, claims.Name)
	if errors.Is(err, services.ErrAuthSubjectMissing) {
		handler.loginLimiter.addFailure(limiterKey, now, loginFailureWindow)
		return handler.apiError(c, fiber.StatusUnauthorized, "invalid access token")
	}
	if err != nil {
		return handler.respondError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return handler.respondError(c, err)
	}
	return handler.sessionResponse(c, &user)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return handler.sessionResponse(c, user)
}

func (handler *Handler) sessionResponse(c *fiber.Ctx, user *models.User) error {
	exists, err := handler.profileService.Exists(c.UserContext(), user)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(sessionResponse{User: *user, ProfileExists: exists})
}
