package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/parse"
)

type createUserRequest struct {
	Name              string         `json:"name" binding:"required"`
	Email             string         `json:"email" binding:"required,email"`
	Role              model.UserRole `json:"role" binding:"required"`
	CertificateNumber string         `json:"certificateNumber"`
	MedicalClass      string         `json:"medicalClass"`
	MedicalExpiry     *model.Date    `json:"medicalExpiry"`
}

// CreateUser registers a pilot, fleet manager or admin.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Role.Valid() {
		badRequest(c, fmt.Errorf("unknown role %q", req.Role))
		return
	}
	initials, err := parse.Initials(req.Name)
	if err != nil {
		badRequest(c, err)
		return
	}

	u := &model.User{
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.ToLower(req.Email),
		Role:              req.Role,
		CertificateNumber: req.CertificateNumber,
		MedicalClass:      req.MedicalClass,
		MedicalExpiry:     req.MedicalExpiry,
		AvatarInitials:    initials,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.store.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
