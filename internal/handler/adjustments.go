package handler

import (
	"net/http"

	"counterdesk/internal/config"
	"counterdesk/internal/dto"
	"counterdesk/internal/middleware"
	"counterdesk/internal/model"
	"counterdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdjustmentsHandler struct {
	svc     service.DiscountService
	catalog *config.ReasonCatalog
}

func NewAdjustmentsHandler(svc service.DiscountService, catalog *config.ReasonCatalog) *AdjustmentsHandler {
	return &AdjustmentsHandler{svc: svc, catalog: catalog}
}

// ValidateAdjustment godoc
// @Summary      Validate a line price adjustment
// @Description  Dry-run validation of one proposed adjustment. All problems are collected and returned together — the till UI shows every error at once. Nothing is persisted.
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ValidateAdjustmentBody true "Proposed adjustment"
// @Success      200  {object} dto.AdjustmentValidationResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales/adjustments/validate [post]
func (h *AdjustmentsHandler) ValidateAdjustment(c *gin.Context) {
	var body dto.ValidateAdjustmentBody
	if !bindAndValidate(c, &body) {
		return
	}
	claims := middleware.GetClaims(c)

	// Only supervisors and admins count as an authorizing actor.
	var actor *uuid.UUID
	if claims.Role == model.RoleSupervisor || claims.Role == model.RoleAdmin {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			actor = &id
		}
	}

	resp := h.svc.ValidateLineAdjustment(body.OriginalUnitPrice, body.Adjustment, actor)
	c.JSON(http.StatusOK, resp)
}

// ListReasons godoc
// @Summary      List configured discount reasons
// @Tags         adjustments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} config.DiscountReason
// @Router       /v1/discount-reasons [get]
func (h *AdjustmentsHandler) ListReasons(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.All())
}
