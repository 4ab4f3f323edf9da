package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beautypass/partner-api/internal/platform/session"
)

type Handler struct {
	svc      *Service
	sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes wires the credential endpoints, all reachable without a
// session.
func (h *Handler) RegisterRoutes(partner *echo.Group) {
	partner.POST("/register", h.Register)
	partner.POST("/login", h.Login)
	partner.POST("/logout", h.Logout)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	a, err := h.svc.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cookie, err := h.sessions.Issue(c.Request().Context(), a.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	a, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	cookie, err := h.sessions.Issue(c.Request().Context(), a.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(session.CookieName); err == nil {
		_ = h.sessions.Revoke(c.Request().Context(), cookie.Value)
	}
	c.SetCookie(h.sessions.ClearCookie())
	return c.NoContent(http.StatusNoContent)
}
