package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"stashbox/internal/audit"
	authhttp "stashbox/internal/auth/adapter/http"
	"stashbox/internal/places/domain/model"
	"stashbox/internal/places/usecase"
	"stashbox/internal/shared/database"
	apperrors "stashbox/internal/shared/errors"
	"stashbox/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// PlaceUnlinker clears references to a place held by another module. Delete
// composes every registered unlinker into the same transaction as the node
// removal, so nothing ever points at a gone place.
type PlaceUnlinker interface {
	DetachPlace(ctx context.Context, placeUID, ownerUID int64) error
}

// PlacesHTTPHandler handles HTTP requests for the place tree.
type PlacesHTTPHandler struct {
	usecase   usecase.PlacesUsecaseInterface
	tx        database.TxRunner
	auditor   audit.Recorder
	unlinkers []PlaceUnlinker
}

// NewPlacesHTTPHandler creates a new places HTTP handler.
func NewPlacesHTTPHandler(
	uc usecase.PlacesUsecaseInterface,
	tx database.TxRunner,
	auditor audit.Recorder,
	unlinkers ...PlaceUnlinker,
) *PlacesHTTPHandler {
	return &PlacesHTTPHandler{
		usecase:   uc,
		tx:        tx,
		auditor:   auditor,
		unlinkers: unlinkers,
	}
}

// AddUnlinkers registers place unlinkers composed into the delete transaction.
func (h *PlacesHTTPHandler) AddUnlinkers(unlinkers ...PlaceUnlinker) {
	h.unlinkers = append(h.unlinkers, unlinkers...)
}

// SetupPlacesRoutes registers the place endpoints. Every route requires a
// valid access token.
func (h *PlacesHTTPHandler) SetupPlacesRoutes(router fiber.Router, middleware *authhttp.AuthMiddleware) {
	protected := router.Group("/", middleware.Protect())
	protected.Get("/", h.List)
	protected.Post("/", h.Create)
	protected.Get("/:uid", h.Get)
	protected.Patch("/:uid", h.Update)
	protected.Delete("/:uid", h.Delete)
}

// PlaceCreateRequest is the payload for creating a place.
type PlaceCreateRequest struct {
	Name      string `json:"name"`
	ParentUID *int64 `json:"parent_uid"`
}

// PlaceUpdateRequest is the partial-update payload. It keeps the tri-state of
// parent_uid: absent, explicit null (detach), or a target uid.
type PlaceUpdateRequest struct {
	Name      *string
	ParentUID *int64
	ParentSet bool
}

// UnmarshalJSON records whether parent_uid was present at all, which the
// standard decoding of a pointer field cannot express.
func (r *PlaceUpdateRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      *string         `json:"name"`
		ParentUID json.RawMessage `json:"parent_uid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Name = raw.Name
	if raw.ParentUID != nil {
		r.ParentSet = true
		if string(raw.ParentUID) != "null" {
			var uid int64
			if err := json.Unmarshal(raw.ParentUID, &uid); err != nil {
				return err
			}
			r.ParentUID = &uid
		}
	}
	return nil
}

// List returns the caller's places, optionally filtered by parent and ordered
// by name.
func (h *PlacesHTTPHandler) List(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return respondPlaceError(c, err)
	}

	places, err := h.usecase.List(c.Context(), ownerUID, filter)
	if err != nil {
		return respondPlaceError(c, err)
	}
	if places == nil {
		places = []*model.Place{}
	}
	return c.JSON(places)
}

// Create adds a node to the caller's tree.
func (h *PlacesHTTPHandler) Create(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	var req PlaceCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}

	var place *model.Place
	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		var err error
		place, err = h.usecase.Create(txCtx, ownerUID, req.Name, req.ParentUID)
		return err
	})
	if err != nil {
		return respondPlaceError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:    audit.EventPlaceCreated,
		UserUID: ownerUID,
		Subject: strconv.FormatInt(place.UID, 10),
	})

	return c.Status(fiber.StatusCreated).JSON(place)
}

// Get returns one place with its immediate parent joined in.
func (h *PlacesHTTPHandler) Get(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondPlaceError(c, err)
	}

	place, parent, err := h.usecase.Get(c.Context(), uid, ownerUID, true)
	if err != nil {
		return respondPlaceError(c, err)
	}
	return c.JSON(usecase.ToReadSchema(place, parent))
}

// Update applies a partial update. Re-parenting is validated against the
// ancestor closure before anything is written.
func (h *PlacesHTTPHandler) Update(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondPlaceError(c, err)
	}

	var req PlaceUpdateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return respondError(c, apperrors.NewValidationError("invalid request body"))
	}
	patch := usecase.PlacePatch{
		Name:      req.Name,
		ParentUID: req.ParentUID,
		ParentSet: req.ParentSet,
	}

	var (
		place  *model.Place
		parent *model.Place
	)
	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		current, _, err := h.usecase.Get(txCtx, uid, ownerUID, false)
		if err != nil {
			return err
		}
		if place, err = h.usecase.Update(txCtx, ownerUID, current, patch); err != nil {
			return err
		}
		place, parent, err = h.usecase.Get(txCtx, uid, ownerUID, true)
		return err
	})
	if err != nil {
		return respondPlaceError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:    audit.EventPlaceUpdated,
		UserUID: ownerUID,
		Subject: strconv.FormatInt(uid, 10),
	})

	return c.JSON(usecase.ToReadSchema(place, parent))
}

// Delete removes a node. Its children become roots and references from other
// modules are detached inside the same transaction.
func (h *PlacesHTTPHandler) Delete(c *fiber.Ctx) error {
	ownerUID, err := utils.GetUserUIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("unauthorized"))
	}

	uid, err := parseUIDParam(c)
	if err != nil {
		return respondPlaceError(c, err)
	}

	err = h.tx.RunTransaction(c.Context(), func(txCtx context.Context) error {
		place, _, err := h.usecase.Get(txCtx, uid, ownerUID, false)
		if err != nil {
			return err
		}
		for _, unlinker := range h.unlinkers {
			if err := unlinker.DetachPlace(txCtx, uid, ownerUID); err != nil {
				return err
			}
		}
		return h.usecase.Delete(txCtx, place)
	})
	if err != nil {
		return respondPlaceError(c, err)
	}

	h.auditor.Record(c.Context(), audit.Event{
		Type:    audit.EventPlaceDeleted,
		UserUID: ownerUID,
		Subject: strconv.FormatInt(uid, 10),
	})

	return c.SendStatus(fiber.StatusNoContent)
}

// Helper methods

func parseUIDParam(c *fiber.Ctx) (int64, error) {
	uid, err := strconv.ParseInt(c.Params("uid"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid place uid")
	}
	return uid, nil
}

// parseListFilter reads the filter query parameters. parent_uid accepts a
// numeric uid or the literal "null" for root nodes; order_by accepts an
// allowed field name with an optional "-" prefix for descending order.
func parseListFilter(c *fiber.Ctx) (model.ListFilter, error) {
	var filter model.ListFilter

	if raw := c.Query("parent_uid"); raw != "" {
		filter.ParentSet = true
		if raw != "null" {
			uid, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return filter, apperrors.NewValidationError("invalid parent_uid filter")
			}
			filter.ParentUID = &uid
		}
	}

	if raw := c.Query("order_by"); raw != "" {
		field := raw
		filter.OrderDirection = model.Ascending
		if strings.HasPrefix(raw, "-") {
			field = raw[1:]
			filter.OrderDirection = model.Descending
		}
		if !model.OrderAllowed(field) {
			return filter, apperrors.NewValidationError("unsupported order_by field")
		}
		filter.OrderField = field
	}

	return filter, nil
}

// respondPlaceError maps usecase sentinels onto the stable error taxonomy. A
// missing re-parent target is a bad request rather than a missing resource:
// the addressed place exists, the payload points at one that does not.
func respondPlaceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrPlaceNotFound):
		return respondError(c, apperrors.NewNotFoundError(err.Error()))
	case errors.Is(err, usecase.ErrParentNotFound):
		return respondError(c, apperrors.NewAppError(apperrors.ErrorTypeNotFound, err.Error(), fiber.StatusBadRequest))
	case errors.Is(err, usecase.ErrCycleDetected):
		return respondError(c, apperrors.NewCycleDetectedError(err.Error()))
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
