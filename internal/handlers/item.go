package handlers

import (
	"context"

	"github.com/dimitrije/capsule-api/internal/middleware"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/dimitrije/capsule-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ItemHandler struct {
	gateEngine GateEngineInterface
}

func NewItemHandler(gateEngine GateEngineInterface) *ItemHandler {
	return &ItemHandler{gateEngine: gateEngine}
}

func toPerspectiveResponse(p models.Perspective) dto.PerspectiveResponse {
	return dto.PerspectiveResponse{
		Feeling:    p.Feeling,
		Need:       p.Need,
		Willing:    p.Willing,
		Compromise: p.Compromise,
	}
}

func toItemResponse(item *models.GatedItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:                item.ID,
		CapsuleID:         item.CapsuleID,
		Kind:              string(item.Kind),
		CreatedBy:         item.CreatedBy,
		Title:             item.Title,
		Description:       item.Description,
		Status:            string(item.Status),
		VoteUserA:         item.A.Vote,
		VoteUserB:         item.B.Vote,
		ConfirmedByA:      item.A.Confirmed,
		ConfirmedByB:      item.B.Confirmed,
		PerspectiveA:      toPerspectiveResponse(item.A.Perspective),
		PerspectiveB:      toPerspectiveResponse(item.B.Perspective),
		DecisionNotes:     item.DecisionNotes,
		MovedToResolveAt:  item.MovedToResolveAt,
		MovedToDecisionAt: item.MovedToDecisionAt,
		ConfirmedAt:       item.ConfirmedAt,
		CompletedAt:       item.CompletedAt,
		ArchivedAt:        item.ArchivedAt,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func (h *ItemHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	status := models.ItemStatus(c.QueryParam("status"))

	items, err := h.gateEngine.ListItems(c.Request.Context(), capsuleID, userID, status)
	if err != nil {
		writeError(c, err, "failed to get items")
		return
	}

	response := make([]dto.ItemResponse, len(items))
	for i := range items {
		response[i] = toItemResponse(&items[i])
	}

	_ = c.JSON(200, response)
}

func (h *ItemHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	var req dto.CreateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	item, err := h.gateEngine.CreateItem(c.Request.Context(), capsuleID, userID, services.CreateItemInput{
		Kind:        models.ItemKind(req.Kind),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err, "failed to create item")
		return
	}

	_ = c.JSON(201, toItemResponse(item))
}

func (h *ItemHandler) Get(c *drift.Context) {
	h.run(c, "failed to get item", h.gateEngine.GetItem)
}

func (h *ItemHandler) Vote(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "item")
	if !ok {
		return
	}

	var req dto.VoteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Value == nil {
		c.BadRequest("value is required")
		return
	}

	item, err := h.gateEngine.Vote(c.Request.Context(), itemID, userID, *req.Value)
	if err != nil {
		writeError(c, err, "failed to record vote")
		return
	}

	_ = c.JSON(200, toItemResponse(item))
}

func (h *ItemHandler) MoveToResolve(c *drift.Context) {
	h.run(c, "failed to move item to resolve", h.gateEngine.MoveToResolve)
}

func (h *ItemHandler) SubmitPerspective(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "item")
	if !ok {
		return
	}

	var req dto.PerspectiveRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	item, err := h.gateEngine.SubmitPerspective(c.Request.Context(), itemID, userID, models.Perspective{
		Feeling:    req.Feeling,
		Need:       req.Need,
		Willing:    req.Willing,
		Compromise: req.Compromise,
	})
	if err != nil {
		writeError(c, err, "failed to submit perspective")
		return
	}

	_ = c.JSON(200, toItemResponse(item))
}

func (h *ItemHandler) MoveToDecision(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "item")
	if !ok {
		return
	}

	// The body is optional.
	var req dto.DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&req); err != nil {
			c.BadRequest("invalid request body")
			return
		}
	}

	item, err := h.gateEngine.MoveToDecision(c.Request.Context(), itemID, userID, req.Notes)
	if err != nil {
		writeError(c, err, "failed to move item to decision")
		return
	}

	_ = c.JSON(200, toItemResponse(item))
}

func (h *ItemHandler) Confirm(c *drift.Context) {
	h.run(c, "failed to confirm item", h.gateEngine.Confirm)
}

func (h *ItemHandler) Complete(c *drift.Context) {
	h.run(c, "failed to complete item", h.gateEngine.Complete)
}

func (h *ItemHandler) Archive(c *drift.Context) {
	h.run(c, "failed to archive item", h.gateEngine.Archive)
}

// run handles the body-less item operations.
func (h *ItemHandler) run(c *drift.Context, fallback string, op func(ctx context.Context, itemID, callerID uuid.UUID) (*models.GatedItem, error)) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "item")
	if !ok {
		return
	}

	item, err := op(c.Request.Context(), itemID, userID)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	_ = c.JSON(200, toItemResponse(item))
}
