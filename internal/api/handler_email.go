package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailtriage/internal/service"
)

type EmailHandler struct {
	emailService    *service.EmailService
	responseService *service.ResponseService
}

func NewEmailHandler(emailService *service.EmailService, responseService *service.ResponseService) *EmailHandler {
	return &EmailHandler{
		emailService:    emailService,
		responseService: responseService,
	}
}

// GetEmails handles GET /api/emails. Returns emails in triage order.
func (h *EmailHandler) GetEmails(c *gin.Context) {
	emails, err := h.emailService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch emails"})
		return
	}
	c.JSON(http.StatusOK, emails)
}

// Resolve handles POST /api/emails/:id/resolve
func (h *EmailHandler) Resolve(c *gin.Context) {
	emailID, ok := emailIDParam(c)
	if !ok {
		return
	}

	if err := h.responseService.Resolve(c.Request.Context(), emailID); err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Email marked as resolved",
		"email_id": emailID,
	})
}

// ClearDatabase handles POST /api/clear-database. Admin only.
func (h *EmailHandler) ClearDatabase(c *gin.Context) {
	deletedEmails, deletedResponses, err := h.emailService.ClearAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear database"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           fmt.Sprintf("Database cleared successfully. Deleted %d emails and %d responses.", deletedEmails, deletedResponses),
		"deleted_emails":    deletedEmails,
		"deleted_responses": deletedResponses,
	})
}

func emailIDParam(c *gin.Context) (int, bool) {
	emailID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return 0, false
	}
	return emailID, true
}
