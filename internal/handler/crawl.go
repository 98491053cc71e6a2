package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"irscout/internal/ircrawl"
	"irscout/pkg/middleware"
)

// Crawl handles POST /api/crawl-ir. Expected failures (blocked, not found)
// are 200 responses with the error field set.
func (h *Handler) Crawl(c *gin.Context) {
	var req ircrawl.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.crawler.Crawl(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, ircrawl.ErrMissingTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No website or IR page URL provided"})
	case errors.Is(err, ircrawl.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		middleware.ContextLogger(c, h.logger).WithError(err).Error("Crawl failed")
		if !errors.Is(err, ircrawl.ErrCrawlFailed) {
			result = ircrawl.CrawlResult{Reports: []ircrawl.ClassifiedReport{}, Error: ircrawl.MsgFailed}
		}
		c.JSON(http.StatusInternalServerError, result)
	}
}
