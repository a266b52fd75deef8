package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boma/internal/middleware"
	"boma/internal/models"
	"boma/internal/service"
)

func (h HandlerSet) SubmitVerification(c *gin.Context) {
	req, err := h.verification.Submit(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newVerificationResponse(req))
}

func (h HandlerSet) MyVerification(c *gin.Context) {
	req, err := h.verification.Mine(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVerificationResponse(req))
}

func (h HandlerSet) ListVerifications(c *gin.Context) {
	status := models.VerificationStatus(c.Query("status"))
	reqs, err := h.verification.List(c.Request.Context(), middleware.CurrentUser(c), status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(reqs, newVerificationResponse))
}

type decisionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ReviewVerification decides on the landlord named by :id.
func (h HandlerSet) ReviewVerification(c *gin.Context) {
	var req decisionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	v, err := h.verification.Review(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), service.Decision{
		Status: models.VerificationStatus(req.Status),
		Notes:  req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVerificationResponse(v))
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), middleware.CurrentUser(c), c.Query("role"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(users, models.User.Public))
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h HandlerSet) ChangeRole(c *gin.Context) {
	var req roleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.ChangeRole(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
