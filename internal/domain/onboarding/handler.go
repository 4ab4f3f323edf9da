package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/beautypass/partner-api/internal/domain/catalog"
	"github.com/beautypass/partner-api/internal/domain/hospital"
	"github.com/beautypass/partner-api/internal/platform/session"
)

// placeholderPrefix marks client-minted identifiers for products not yet
// persisted. It is resolved here, at the transport boundary; nothing past
// the handler ever sees it.
const placeholderPrefix = "temp-"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the onboarding endpoints. Every route requires a
// session.
func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/metadata", h.Metadata)
	authed.GET("/state", h.State)
	authed.POST("/draft", h.SaveDraft)
	authed.POST("/submit", h.SubmitFinal)
	authed.POST("/submit/undo", h.UndoSubmit)
}

func (h *Handler) Metadata(c echo.Context) error {
	if _, err := session.RequireAccountID(c); err != nil {
		return err
	}
	variations, err := h.svc.Variations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load metadata")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"variations": variations})
}

func (h *Handler) State(c echo.Context) error {
	accountID, err := session.RequireAccountID(c)
	if err != nil {
		return err
	}
	a, profile, products, err := h.svc.State(c.Request().Context(), accountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load onboarding state")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"is_submitted": a.IsSubmitted,
		"profile":      profile,
		"products":     products,
	})
}

func (h *Handler) SaveDraft(c echo.Context) error {
	return h.handleSave(c, h.svc.SaveDraft)
}

func (h *Handler) SubmitFinal(c echo.Context) error {
	return h.handleSave(c, h.svc.SubmitFinal)
}

func (h *Handler) UndoSubmit(c echo.Context) error {
	accountID, err := session.RequireAccountID(c)
	if err != nil {
		return err
	}
	if err := h.svc.UndoSubmit(c.Request().Context(), accountID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not revert submission")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"is_submitted": false})
}

type saveFunc func(ctx context.Context, accountID uuid.UUID, req SaveRequest) (*SaveResult, error)

func (h *Handler) handleSave(c echo.Context, save saveFunc) error {
	accountID, err := session.RequireAccountID(c)
	if err != nil {
		return err
	}

	req, err := parseSaveRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := save(c.Request().Context(), accountID, *req)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		var capErr *hospital.ErrInteriorCapExceeded
		if errors.As(err, &capErr) {
			return echo.NewHTTPError(http.StatusBadRequest, capErr.Error())
		}
		var ownErr *catalog.ErrProductNotOwned
		if errors.As(err, &ownErr) {
			return echo.NewHTTPError(http.StatusBadRequest, ownErr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "save failed: "+rootCause(err))
	}

	return c.JSON(http.StatusOK, res)
}

// savePayload is the JSON part of the multipart save request. Binary images
// travel as sibling parts.
type savePayload struct {
	Profile            ProfileInput `json:"profile"`
	DeleteLogo         bool         `json:"delete_logo"`
	DeleteInteriorURLs []string     `json:"delete_interior_urls"`
	Products           []struct {
		ID           string                 `json:"id"`
		Name         string                 `json:"name"`
		VariationRef string                 `json:"variation_ref"`
		Pricings     []catalog.PricingInput `json:"pricings"`
	} `json:"products"`
}

func parseSaveRequest(c echo.Context) (*SaveRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("expected multipart form: %w", err)
	}

	payloads := form.Value["payload"]
	if len(payloads) == 0 {
		return nil, fmt.Errorf("missing payload part")
	}
	var payload savePayload
	if err := json.Unmarshal([]byte(payloads[0]), &payload); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	req := &SaveRequest{
		Profile: payload.Profile,
		Assets: hospital.AssetOps{
			DeleteLogo:         payload.DeleteLogo,
			DeleteInteriorURLs: payload.DeleteInteriorURLs,
		},
	}

	for i, p := range payload.Products {
		id, err := resolveProductID(p.ID)
		if err != nil {
			return nil, fmt.Errorf("products[%d].id: %w", i, err)
		}
		req.Products = append(req.Products, catalog.ProductInput{
			ID:           id,
			Name:         p.Name,
			VariationRef: p.VariationRef,
			Pricings:     p.Pricings,
		})
	}

	if logos := form.File["logo"]; len(logos) > 0 {
		up, err := readUpload(logos[0])
		if err != nil {
			return nil, err
		}
		req.Assets.NewLogo = up
	}
	for _, fh := range form.File["interior"] {
		up, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		req.Assets.NewInteriors = append(req.Assets.NewInteriors, *up)
	}

	return req, nil
}

// resolveProductID turns the wire identifier into the typed form: a
// placeholder (or empty) id means a not-yet-persisted product, anything else
// must be a durable uuid.
func resolveProductID(raw string) (*uuid.UUID, error) {
	if raw == "" || strings.HasPrefix(raw, placeholderPrefix) {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("not a durable or placeholder identifier")
	}
	return &id, nil
}

func readUpload(fh *multipart.FileHeader) (*hospital.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}
	return &hospital.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// rootCause keeps the user-facing message to the innermost failure while the
// full chain goes to the log via middleware.
func rootCause(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
