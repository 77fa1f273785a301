package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mailtriage/internal/service"
)

type IngestHandler struct {
	ingestService *service.IngestService
}

func NewIngestHandler(ingestService *service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// LoadEmails handles POST /api/load-emails. Ingests the bundled
// sample CSV with AI analysis; replies are generated on demand.
func (h *IngestHandler) LoadEmails(c *gin.Context) {
	result, err := h.ingestService.LoadSamples(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf(
			"Successfully processed %d emails with %s analysis (skipped %d duplicates). Responses can be generated on-demand.",
			result.Processed, result.Engine, result.Skipped),
		"processed":    result.Processed,
		"skipped":      result.Skipped,
		"total_in_csv": result.TotalInCSV,
		"ai_engine":    result.Engine,
	})
}

// UploadCSV handles POST /api/upload-csv (multipart form, field "file").
func (h *IngestHandler) UploadCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are allowed"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	result, err := h.ingestService.UploadCSV(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf(
			"Successfully uploaded %d emails with %s analysis (skipped %d duplicates).",
			result.Processed, result.Engine, result.Skipped),
		"processed":    result.Processed,
		"skipped":      result.Skipped,
		"total_in_csv": result.TotalInCSV,
		"ai_engine":    result.Engine,
	})
}
