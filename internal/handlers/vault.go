package handlers

import (
	"context"
	"strings"

	"github.com/dimitrije/capsule-api/internal/middleware"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/dimitrije/capsule-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type VaultHandler struct {
	vaultService VaultServiceInterface
}

func NewVaultHandler(vaultService VaultServiceInterface) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

func toVaultItemResponse(item *models.VaultItem) dto.VaultItemResponse {
	return dto.VaultItemResponse{
		ID:                 item.ID,
		CapsuleID:          item.CapsuleID,
		UploadedBy:         item.UploadedBy,
		Title:              item.Title,
		PayloadRef:         item.PayloadRef,
		ApprovedByUploader: item.ApprovedByUploader,
		ApprovedByPartner:  item.ApprovedByPartner,
		Status:             string(item.Status),
		RejectedBy:         item.RejectedBy,
		ApprovedAt:         item.ApprovedAt,
		RejectedAt:         item.RejectedAt,
		CreatedAt:          item.CreatedAt,
		UpdatedAt:          item.UpdatedAt,
	}
}

func toPresignedURLResponse(url *services.PresignedURL) dto.PresignedURLResponse {
	return dto.PresignedURLResponse{
		Key:       url.Key,
		URL:       url.URL,
		ExpiresAt: url.ExpiresAt,
	}
}

func (h *VaultHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	status := models.VaultStatus(c.QueryParam("status"))

	items, err := h.vaultService.List(c.Request.Context(), capsuleID, userID, status)
	if err != nil {
		writeError(c, err, "failed to get vault items")
		return
	}

	response := make([]dto.VaultItemResponse, len(items))
	for i := range items {
		response[i] = toVaultItemResponse(&items[i])
	}

	_ = c.JSON(200, response)
}

func (h *VaultHandler) Upload(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	var req dto.UploadVaultItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.PayloadRef) == "" {
		c.BadRequest("payload_ref is required")
		return
	}

	item, err := h.vaultService.Upload(c.Request.Context(), capsuleID, userID, services.UploadInput{
		Title:      req.Title,
		PayloadRef: req.PayloadRef,
	})
	if err != nil {
		writeError(c, err, "failed to upload vault item")
		return
	}

	_ = c.JSON(201, toVaultItemResponse(item))
}

func (h *VaultHandler) UploadURL(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	url, err := h.vaultService.UploadURL(c.Request.Context(), capsuleID, userID)
	if err != nil {
		writeError(c, err, "failed to create upload url")
		return
	}

	_ = c.JSON(200, toPresignedURLResponse(url))
}

func (h *VaultHandler) Get(c *drift.Context) {
	h.run(c, "failed to get vault item", h.vaultService.Get)
}

func (h *VaultHandler) Approve(c *drift.Context) {
	h.run(c, "failed to approve vault item", h.vaultService.Approve)
}

func (h *VaultHandler) Reject(c *drift.Context) {
	h.run(c, "failed to reject vault item", h.vaultService.Reject)
}

func (h *VaultHandler) DownloadURL(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "vault item")
	if !ok {
		return
	}

	url, err := h.vaultService.DownloadURL(c.Request.Context(), itemID, userID)
	if err != nil {
		writeError(c, err, "failed to create download url")
		return
	}

	_ = c.JSON(200, toPresignedURLResponse(url))
}

func (h *VaultHandler) run(c *drift.Context, fallback string, op func(ctx context.Context, itemID, callerID uuid.UUID) (*models.VaultItem, error)) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	itemID, ok := parseUUIDParam(c, "itemId", "vault item")
	if !ok {
		return
	}

	item, err := op(c.Request.Context(), itemID, userID)
	if err != nil {
		writeError(c, err, fallback)
		return
	}

	_ = c.JSON(200, toVaultItemResponse(item))
}
