package handler

import (
	"errors"
	"net/http"

	"counterdesk/internal/apierror"
	"counterdesk/internal/dto"
	"counterdesk/internal/middleware"
	"counterdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary      Open a register session
// @Description  Opens a cash drawer session with a counted opening float. Fails if the register already has an open session.
// @Tags         register
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenRegisterRequest true "Register and opening float"
// @Success      201 {object} dto.RegisterReportResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordMovement godoc
// @Summary      Record a manual cash movement
// @Tags         register
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ManualMovementRequest true "Movement detail"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/register/movement [post]
func (h *RegisterHandler) RecordMovement(c *gin.Context) {
	var req dto.ManualMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecordMovement(c.Request.Context(), req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionClosed) {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Close godoc
// @Summary      Close a register session
// @Description  Blind count close: the operator declares the drawer total, the report shows declared vs expected.
// @Tags         register
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CloseRegisterRequest true "Declared totals"
// @Success      200 {object} dto.RegisterReportResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrSessionClosed) {
			status = http.StatusConflict
		}
		c.JSON(status, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary      Session report
// @Tags         register
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session UUID"
// @Success      200 {object} dto.RegisterReportResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/register/{id}/report [get]
func (h *RegisterHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("session not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
