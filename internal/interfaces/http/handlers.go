package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/compliance"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/invoice"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/metrics"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/payment"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/zatca"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	evaluator *compliance.Evaluator
	processor *payment.Processor
	exporter  *invoice.Exporter
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger *zap.Logger) *Handlers {
	return &Handlers{
		evaluator: deps.Evaluator,
		processor: deps.Processor,
		exporter:  deps.Exporter,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ComplianceRequest is the body of a compliance check
type ComplianceRequest struct {
	Code string `json:"code"`
}

// ComplianceResponse is a report with its summary and rendered markdown
type ComplianceResponse struct {
	*compliance.Report
	Summary  compliance.Summary `json:"summary"`
	Markdown string             `json:"markdown"`
}

// DecodeQRRequest is the body of a QR decode call
type DecodeQRRequest struct {
	QR string `json:"qr" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CheckCompliance handles POST /api/v1/compliance/check
func (h *Handlers) CheckCompliance(c *gin.Context) {
	var req ComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	report := h.evaluator.Evaluate(req.Code)
	if h.metrics != nil {
		h.metrics.ObserveReport(report)
	}

	h.logger.Info("Compliance check completed",
		zap.String("verdict", string(report.Verdict)),
		zap.Int("violations", len(report.Violations)))

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: ComplianceResponse{
			Report:   report,
			Summary:  report.Summary(),
			Markdown: report.Markdown(),
		},
	})
}

// QuotePayment handles POST /api/v1/payments/quote
func (h *Handlers) QuotePayment(c *gin.Context) {
	var req payment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	quote, err := h.processor.Quote(req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: quote})
}

// CreatePayment handles POST /api/v1/payments
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req payment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	result, err := h.processor.Process(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	// a declined charge is still a 200; the envelope mirrors the gateway outcome
	c.JSON(http.StatusOK, Response{Success: result.Success, Data: result})
}

// DecodeQR handles POST /api/v1/zatca/qr/decode
func (h *Handlers) DecodeQR(c *gin.Context) {
	var req DecodeQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "qr is required", err)
		return
	}

	inv, err := zatca.ParseQRCode(req.QR)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inv})
}

// QRImage handles GET /api/v1/zatca/qr.png
func (h *Handlers) QRImage(c *gin.Context) {
	payload := c.Query("payload")
	if payload == "" {
		h.badRequest(c, "payload is required", nil)
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 1024 {
			h.badRequest(c, "size must be between 64 and 1024", err)
			return
		}
		size = n
	}

	png, err := zatca.RenderPNG(payload, size)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// ExportInvoice handles POST /api/v1/invoices/xlsx
func (h *Handlers) ExportInvoice(c *gin.Context) {
	var req payment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	quote, err := h.processor.Quote(req)
	if err != nil {
		h.fail(c, err)
		return
	}

	doc := invoice.FromQuote(quote)
	doc.Description = req.Description

	var buf bytes.Buffer
	if err := h.exporter.WriteTo(&buf, doc); err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-`+doc.Number+`.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	if err != nil {
		h.logger.Warn("Rejected request", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
		Kind:    "invalid_request",
	})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Warn("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
		Kind:    ErrorKind(err),
	})
}
