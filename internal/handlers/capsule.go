package handlers

import (
	"net/mail"
	"strings"

	"github.com/dimitrije/capsule-api/internal/middleware"
	"github.com/dimitrije/capsule-api/internal/models"
	"github.com/dimitrije/capsule-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type CapsuleHandler struct {
	capsuleService CapsuleServiceInterface
	countsService  CountsServiceInterface
	emailService   EmailServiceInterface
}

func NewCapsuleHandler(capsuleService CapsuleServiceInterface, countsService CountsServiceInterface, emailService EmailServiceInterface) *CapsuleHandler {
	return &CapsuleHandler{
		capsuleService: capsuleService,
		countsService:  countsService,
		emailService:   emailService,
	}
}

// toCapsuleResponse renders a capsule from the viewpoint of userID. The
// invite code is shown only while the capsule is waiting for its second side.
func toCapsuleResponse(capsule *models.Capsule, userID uuid.UUID) dto.CapsuleResponse {
	side, _ := capsule.SideOf(userID)
	resp := dto.CapsuleResponse{
		ID:          capsule.ID,
		Status:      string(capsule.Status),
		Side:        string(side),
		UserA:       capsule.UserA,
		UserB:       capsule.UserB,
		CreatedAt:   capsule.CreatedAt,
		JoinedAt:    capsule.JoinedAt,
		DissolvedAt: capsule.DissolvedAt,
	}
	if capsule.Status == models.CapsuleStatusPending {
		resp.InviteCode = capsule.InviteCode
	}
	return resp
}

func parseUUIDParam(c *drift.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + label + " id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CapsuleHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsule, err := h.capsuleService.Create(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to create capsule")
		return
	}

	_ = c.JSON(201, toCapsuleResponse(capsule, userID))
}

func (h *CapsuleHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsules, err := h.capsuleService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to get capsules")
		return
	}

	response := make([]dto.CapsuleResponse, len(capsules))
	for i := range capsules {
		response[i] = toCapsuleResponse(&capsules[i], userID)
	}

	_ = c.JSON(200, response)
}

func (h *CapsuleHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinCapsuleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		c.BadRequest("code is required")
		return
	}

	capsule, err := h.capsuleService.Join(c.Request.Context(), req.Code, userID)
	if err != nil {
		writeError(c, err, "failed to join capsule")
		return
	}

	_ = c.JSON(200, toCapsuleResponse(capsule, userID))
}

func (h *CapsuleHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	capsule, err := h.capsuleService.Get(c.Request.Context(), capsuleID, userID)
	if err != nil {
		writeError(c, err, "failed to get capsule")
		return
	}

	_ = c.JSON(200, toCapsuleResponse(capsule, userID))
}

func (h *CapsuleHandler) Dissolve(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	capsule, err := h.capsuleService.Dissolve(c.Request.Context(), capsuleID, userID)
	if err != nil {
		writeError(c, err, "failed to dissolve capsule")
		return
	}

	_ = c.JSON(200, toCapsuleResponse(capsule, userID))
}

func (h *CapsuleHandler) SendInviteEmail(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	var req dto.InviteEmailRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		c.BadRequest("a valid email is required")
		return
	}

	if !h.emailService.IsConfigured() {
		_ = c.JSON(503, map[string]string{
			"code":    "EMAIL_NOT_CONFIGURED",
			"message": "email delivery is not configured",
		})
		return
	}

	ctx := c.Request.Context()

	capsule, err := h.capsuleService.Get(ctx, capsuleID, userID)
	if err != nil {
		writeError(c, err, "failed to get capsule")
		return
	}

	if capsule.Status != models.CapsuleStatusPending {
		_ = c.JSON(409, map[string]string{
			"code":    "ALREADY_FULL",
			"message": "capsule is no longer accepting a partner",
		})
		return
	}

	inviter := strings.TrimSpace(req.InviterName)
	if inviter == "" {
		inviter = "Someone"
	}

	if err := h.emailService.SendCapsuleInvite(req.Email, inviter, capsule.InviteCode); err != nil {
		c.InternalServerError("failed to send invite email")
		return
	}

	_ = c.JSON(202, map[string]string{"status": "sent"})
}

func (h *CapsuleHandler) Counts(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	capsuleID, ok := parseUUIDParam(c, "capsuleId", "capsule")
	if !ok {
		return
	}

	counts, err := h.countsService.Get(c.Request.Context(), capsuleID, userID)
	if err != nil {
		writeError(c, err, "failed to get counts")
		return
	}

	response := dto.CountsResponse{
		CapsuleID: counts.CapsuleID,
		Items:     make(map[string]int, len(counts.Items)),
		Vault:     make(map[string]int, len(counts.Vault)),
	}
	for status, n := range counts.Items {
		response.Items[string(status)] = n
	}
	for status, n := range counts.Vault {
		response.Vault[string(status)] = n
	}

	_ = c.JSON(200, response)
}
