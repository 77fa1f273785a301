package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailtriage/internal/service"
)

type ResponseHandler struct {
	responseService *service.ResponseService
}

func NewResponseHandler(responseService *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService}
}

type sendRequest struct {
	ResponseText    string `json:"response_text"`
	SendImmediately bool   `json:"send_immediately"`
}

// GetResponse handles GET /api/emails/:id/response. A missing draft
// returns an empty body with has_response false, not an error.
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	emailID, ok := emailIDParam(c)
	if !ok {
		return
	}

	resp, has, err := h.responseService.GetResponse(c.Request.Context(), emailID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"generated_response": "",
			"final_response":     "",
			"is_sent":            0,
			"has_response":       false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_response": resp.GeneratedResponse,
		"final_response":     resp.FinalResponse,
		"is_sent":            resp.IsSent,
		"has_response":       has,
	})
}

// Generate handles POST /api/emails/:id/generate-response
func (h *ResponseHandler) Generate(c *gin.Context) {
	emailID, ok := emailIDParam(c)
	if !ok {
		return
	}

	result, err := h.responseService.Generate(c.Request.Context(), emailID)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "AI response generated successfully",
		"response":        result.Response,
		"email_priority":  result.Priority,
		"email_sentiment": result.Sentiment,
		"ai_engine":       result.Engine,
	})
}

// Send handles POST /api/emails/:id/send. Sending is simulated.
func (h *ResponseHandler) Send(c *gin.Context) {
	emailID, ok := emailIDParam(c)
	if !ok {
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.responseService.Send(c.Request.Context(), emailID, req.ResponseText, req.SendImmediately); err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send email"})
		return
	}

	message := "Draft saved successfully"
	if req.SendImmediately {
		message = "Email sent successfully (simulated)"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"sent":    req.SendImmediately,
	})
}

// SaveDraft handles POST /api/emails/:id/save-draft
func (h *ResponseHandler) SaveDraft(c *gin.Context) {
	emailID, ok := emailIDParam(c)
	if !ok {
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.responseService.SaveDraft(c.Request.Context(), emailID, req.ResponseText); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft saved successfully"})
}
