package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const accountIDKey = "account_id"

// Middleware resolves the session cookie, if present, and stores the account
// id in the echo context. Requests without a valid session pass through
// unauthenticated; handlers that mutate must call RequireAccountID.
func Middleware(m *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err == nil && cookie.Value != "" {
				if accountID, err := m.Resolve(c.Request().Context(), cookie.Value); err == nil {
					c.Set(accountIDKey, accountID)
				}
			}
			return next(c)
		}
	}
}

// AccountID returns the resolved account id for the request, if any.
func AccountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(accountIDKey).(uuid.UUID)
	return id, ok
}

// RequireAccountID returns the resolved account id or a 401 error. No write
// handler may proceed without it.
func RequireAccountID(c echo.Context) (uuid.UUID, error) {
	id, ok := AccountID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
