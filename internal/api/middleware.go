package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

const (
	authCookieName      = "patientlog_auth"
	languageCookieName  = "patientlog_lang"
	requestIDHeader     = "X-Request-ID"
	contextUserKey      = "current_user"
	contextLanguageKey  = "current_language"
	contextRequestIDKey = "requestid"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(contextRequestIDKey).(string)
	return id
}

// RequestID keeps a caller supplied X-Request-ID or issues a new one.
func RequestID(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(requestIDHeader))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Locals(contextRequestIDKey, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

// LanguageMiddleware resolves the language from ?lang, then the cookie, then Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := strings.TrimSpace(c.Cookies(languageCookieName))
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}
	if queryLanguage := strings.TrimSpace(c.Query("lang")); queryLanguage != "" {
		language = handler.i18n.NormalizeLanguage(queryLanguage)
		if cookieLanguage != language {
			handler.setLanguageCookie(c, language)
		}
	}

	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	c.Cookie(&fiber.Cookie{
		Name:     languageCookieName,
		Value:    language,
		Path:     "/",
		HTTPOnly: false,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().AddDate(1, 0, 0),
	})
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		handler.logger.Debug("request not authenticated", zap.String("request_id", requestID(c)), zap.Error(err))
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}
