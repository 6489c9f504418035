package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	authhttp "stashbox/internal/auth/adapter/http"
	"stashbox/internal/items/domain/model"
	"stashbox/internal/items/usecase"
	placesusecase "stashbox/internal/places/usecase"
	"stashbox/internal/shared/database"
	apperrors "stashbox/internal/shared/errors"
	"stashbox/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// ItemsHTTPHandler handles HTTP requests for inventory items.
type ItemsHTTPHandler struct {
	usecase usecase.ItemsUsecaseInterface
	tx      database.TxRunner
}

// NewItemsHTTPHandler creates a new items HTTP handler.
func NewItemsHTTPHandler(uc usecase.ItemsUsecaseInterface, tx database.TxRunner) *ItemsHTTPHandler {
	return &ItemsHTTPHandler{usecase: uc, tx: tx}
}

// SetupItemsRoutes registers the item endpoints. Every route requires a valid
// access token.
func (h *ItemsHTTPHandler) SetupItemsRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	protected := router.Group("/", middleware.Protect())
	protected.Get("/", h.List)
	protected.Post("/", h.Create)
	protected.Get("/:uid", h.Get)
	protected.Patch("/:uid", h.Update)
	protected.Delete("/:uid", h.Delete)
}

// ItemCreateRequest is the payload for creating an item.
type ItemCreateRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	CurrencyCode *string  `json:"currency_code"`
	Quantity     int64    `json:"quantity"`
	PlaceUID     *int64   `json:"place_uid"`
}

// ItemUpdateRequest is the partial-update payload. place_uid keeps its
// tri-state: absent, explicit null (unplace), or a target uid.
type ItemUpdateRequest struct {
	Name         *string
	Description  *string
	Price        *float64
	CurrencyCode *string
	Quantity     *int64
	PlaceUID     *int64
	PlaceSet     bool
}

// UnmarshalJSON records whether place_uid was present at all.
func (r *ItemUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name         *string         `json:"name"`
		Description  *string         `json:"description"`
		Price        *float64        `json:"price"`
		CurrencyCode *string         `json:"currency_code"`
		Quantity     *int64          `json:"quantity"`
		PlaceUID     json.RawMessage `json:"place_uid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Name = raw.Name
	r.Description = raw.Description
	r.Price = raw.Price
	r.CurrencyCode = raw.CurrencyCode
	r.Quantity = raw.Quantity
	if raw.PlaceUID != nil {
		r.PlaceSet = true
		if string(raw.PlaceUID) != "null" {
			var uid int64
			if err := json.Unmarshal(raw.PlaceUID, &uid); err != nil {
				return err
			}
			r.PlaceUID = &uid
		}
	}
	return nil
}

// List returns the caller's items.
func (h *ItemsHTTPHandler) List(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	items, err := h.usecase.List(c.Context(), ownerUID)
	if err != nil {
		return respondItemError(c, err)
	}
	if items == nil {
		items = []*model.Item{}
	}
	return c.JSON(items)
}

// Create adds an item, optionally stored inside a place.
func (h *ItemsHTTPHandler) Create(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	var req ItemCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}

	var item *model.Item
	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		var err error
		item, err = h.usecase.Create(txCtx, ownerUID, usecase.ItemCreate{
			Name:         req.Name,
			Description:  req.Description,
			Price:        req.Price,
			CurrencyCode: req.CurrencyCode,
			Quantity:     req.Quantity,
			PlaceUID:     req.PlaceUID,
		})
		return err
	})
	if err != nil {
		return respondItemError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Get returns one item.
func (h *ItemsHTTPHandler) Get(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondItemError(c, err)
	}

	item, err := h.usecase.Get(c.Context(), uid, ownerUID)
	if err != nil {
		return respondItemError(c, err)
	}
	return c.JSON(item)
}

// Update applies a partial update.
func (h *ItemsHTTPHandler) Update(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondItemError(c, err)
	}

	var req ItemUpdateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}
	patch := usecase.ItemPatch{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		CurrencyCode: req.CurrencyCode,
		Quantity:     req.Quantity,
		PlaceUID:     req.PlaceUID,
		PlaceSet:     req.PlaceSet,
	}

	var item *model.Item
	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		current, err := h.usecase.Get(txCtx, uid, ownerUID)
		if err != nil {
			return err
		}
		item, err = h.usecase.Update(txCtx, ownerUID, current, patch)
		return err
	})
	if err != nil {
		return respondItemError(c, err)
	}
	return c.JSON(item)
}

// Delete removes an item.
func (h *ItemsHTTPHandler) Delete(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondItemError(c, err)
	}

	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		return h.usecase.Delete(txCtx, uid, ownerUID)
	})
	if err != nil {
		return respondItemError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Helper methods

func parseUIDParam(c *fiber.Ctx) (int64, error) {
	uid, err := strconv.ParseInt(c.Params("uid"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid item uid")
	}
	return uid, nil
}

// respondItemError maps usecase sentinels onto the stable error taxonomy. A
// missing target place is a bad request: the payload points at a place that
// does not exist for this user.
func respondItemError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrItemNotFound):
		return respondError(c, apperrors.NewNotFoundError(err.Error()))
	case errors.Is(err, placesusecase.ErrPlaceNotFound):
		return respondError(c, apperrors.NewAppError(apperrors.ErrorTypeNotFound, err.Error(), fiber.StatusBadRequest))
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return respondError(c, appErr)
		}
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}
}

func respondError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"error": appErr,
	})
}
