package handler

import (
	"errors"
	"net/http"

	"counterdesk/internal/apierror"
	"counterdesk/internal/dto"
	"counterdesk/internal/middleware"
	"counterdesk/internal/model"
	"counterdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	svc      service.SaleService
	reversal service.ReversalService
}

func NewSalesHandler(svc service.SaleService, reversal service.ReversalService) *SalesHandler {
	return &SalesHandler{svc: svc, reversal: reversal}
}

// RegisterSale godoc
// @Summary      Register a new sale
// @Description  Creates a sale atomically: validates line adjustments, deducts stock, creates reservation holds and register movements.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegisterSaleRequest true "Sale detail"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) RegisterSale(c *gin.Context) {
	var req dto.RegisterSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	// Supervisors and admins authorize their own restricted adjustments.
	var authorizer *uuid.UUID
	if claims.Role == model.RoleSupervisor || claims.Role == model.RoleAdmin {
		authorizer = &userID
	}

	resp, err := h.svc.RegisterSale(c.Request.Context(), userID, authorizer, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSales godoc
// @Summary      List sales
// @Description  Returns a paginated list of sales filtered by date and status.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        date   query string false "Date YYYY-MM-DD (default: today)"
// @Param        status query string false "pending | paid | completed | cancelled | all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Rows per page (default 50)"
// @Success      200    {object} dto.SaleListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sales"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteSale godoc
// @Summary      Mark a paid sale as completed
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id}/complete [patch]
func (h *SalesHandler) CompleteSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale id"))
		return
	}
	if err := h.svc.CompleteSale(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrInvalidSaleStatus):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("failed to complete sale"))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// PreviewReversal godoc
// @Summary      Preview a sale reversal
// @Description  Read-only impact report: stock to restore, reservation holds to revert or release, payments to refund. Recomputed on every call, mutates nothing.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale UUID"
// @Success      200  {object} dto.ReversalPreviewResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id}/reversal-preview [get]
func (h *SalesHandler) PreviewReversal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale id"))
		return
	}
	resp, err := h.reversal.Preview(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("failed to build reversal preview"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExecuteReversal godoc
// @Summary      Cancel a sale
// @Description  Runs all compensations in one transaction: restores stock, reverts/releases reservation holds, refunds payments, marks the sale cancelled. Safe to retry — already-applied steps are skipped.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "Sale UUID"
// @Param        body body dto.ExecuteReversalRequest true "Cancellation reason"
// @Success      200  {object} dto.ReversalResultResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales/{id}/reversal [post]
func (h *SalesHandler) ExecuteReversal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid sale id"))
		return
	}
	var req dto.ExecuteReversalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actor, _ := uuid.Parse(claims.UserID)

	resp, err := h.reversal.Execute(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSaleNotFound):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrSaleAlreadyCancelled):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		case errors.Is(err, service.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("reversal failed"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
