package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"irscout/internal/ircrawl"
	"irscout/internal/summary"
	"irscout/pkg/middleware"
)

// multipartOverhead leaves room for form fields around the PDF part.
const multipartOverhead = 1 << 20

const msgTooLarge = "PDF file is too large (max 50MB)"

// PDFSummary handles POST /api/pdf-summary. It takes either a JSON body
// with pdfUrl or a multipart upload in the "file" field.
func (h *Handler) PDFSummary(c *gin.Context) {
	if h.summaries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report summaries are not configured"})
		return
	}

	req, ok := bindPDFRequest(c)
	if !ok {
		return
	}

	result, err := h.summaries.SummarizePDF(c.Request.Context(), req)
	h.metrics.ObserveSummary("pdf", outcome(err))
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	switch {
	case errors.Is(err, summary.ErrMissingURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF URL provided"})
	case errors.Is(err, summary.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, summary.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
	case errors.Is(err, summary.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract text from PDF. It may be image-based."})
	case errors.Is(err, summary.ErrInvalidPDF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a readable PDF"})
	case errors.Is(err, summary.ErrBlocked):
		c.JSON(http.StatusBadGateway, gin.H{"error": ircrawl.MsgBlocked})
	case errors.Is(err, summary.ErrFetchFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch PDF"})
	default:
		middleware.ContextLogger(c, h.logger).WithError(err).Error("PDF summary generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF summary"})
	}
}

// bindPDFRequest reads the request body. It writes the error response
// itself and reports false when the body is unusable.
func bindPDFRequest(c *gin.Context) (summary.PDFRequest, bool) {
	var req summary.PDFRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return req, false
		}
		return req, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, summary.MaxPDFBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		}
		return req, false
	}
	if header.Size > summary.MaxPDFBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgTooLarge})
		return req, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return req, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, summary.MaxPDFBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return req, false
	}

	req.Data = data
	req.Ticker = c.PostForm("ticker")
	req.ReportType = c.PostForm("reportType")
	return req, true
}
