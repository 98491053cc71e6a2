package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"irscout/internal/ircrawl"
	"irscout/internal/summary"
	"irscout/pkg/middleware"
)

// Summary handles POST /api/report-summary.
func (h *Handler) Summary(c *gin.Context) {
	if h.summaries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report summaries are not configured"})
		return
	}

	var req summary.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.summaries.Summarize(c.Request.Context(), req)
	h.metrics.ObserveSummary("html", outcome(err))
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	switch {
	case errors.Is(err, summary.ErrMissingURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
	case errors.Is(err, summary.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, summary.ErrUnsupportedContent):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "PDF reports are summarized by /api/pdf-summary"})
	case errors.Is(err, summary.ErrEmptyContent):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Report has no readable text"})
	case errors.Is(err, summary.ErrBlocked):
		c.JSON(http.StatusBadGateway, gin.H{"error": ircrawl.MsgBlocked})
	case errors.Is(err, summary.ErrFetchFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch the report"})
	default:
		middleware.ContextLogger(c, h.logger).WithError(err).Error("Summary generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate summary"})
	}
}
