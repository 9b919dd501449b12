package api

import (
	"errors"
	"net/http"
	"strconv"

	"api_fiado/internal/export"
	"api_fiado/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for
// sales, payments and reports.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

func idParam(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to responses. Validation failures keep
// every message so the form can show them all.
func (h *salesHandler) writeError(ctx *gin.Context, err error, msg string) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"errors": verr.Messages})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("request_id", ctx.GetString(requestIDKey)))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// handleListSales handles GET /sales.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.salesService.RecentSales()})
}

// handleCreateSale handles POST /sales.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.SaleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.SubmitSale(ctx.Request.Context(), req)
	if err != nil {
		h.writeError(ctx, err, "failed to create sale")
		return
	}
	ctx.JSON(http.StatusCreated, sale)
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	detail, err := h.salesService.SaleDetail(id)
	if err != nil {
		h.writeError(ctx, err, "failed to get sale")
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// handlePatchSale handles PATCH /sales/:id.
func (h *salesHandler) handlePatchSale(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var req sales.SaleUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	updated, err := h.salesService.UpdateSale(ctx.Request.Context(), id, req)
	if err != nil {
		h.writeError(ctx, err, "failed to update sale")
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// handleDeleteSale handles DELETE /sales/:id.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := h.salesService.DeleteSale(ctx.Request.Context(), id); err != nil {
		h.writeError(ctx, err, "failed to delete sale")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handleListPayments handles GET /payments.
func (h *salesHandler) handleListPayments(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.salesService.ListPayments()})
}

// handleCreatePayment handles POST /sales/:id/payments.
func (h *salesHandler) handleCreatePayment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	var req sales.PaymentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	req.SaleID = id

	payment, err := h.salesService.SubmitPayment(ctx.Request.Context(), req)
	if err != nil {
		h.writeError(ctx, err, "failed to create payment")
		return
	}
	ctx.JSON(http.StatusCreated, payment)
}

// handleDeletePayment handles DELETE /payments/:id.
func (h *salesHandler) handleDeletePayment(ctx *gin.Context) {
	id, ok := idParam(ctx)
	if !ok {
		return
	}
	if err := h.salesService.DeletePayment(ctx.Request.Context(), id); err != nil {
		h.writeError(ctx, err, "failed to delete payment")
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *salesHandler) handleCustomers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.salesService.Customers()})
}

func (h *salesHandler) handleCustomerSales(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.salesService.CustomerSales(ctx.Param("name"))})
}

func (h *salesHandler) handleReport(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.salesService.Report())
}

func (h *salesHandler) handleOrphans(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"results": h.salesService.Orphans()})
}

// handleExport handles GET /report/export and streams an xlsx workbook.
func (h *salesHandler) handleExport(ctx *gin.Context) {
	ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Header("Content-Disposition", "attachment; filename=ledger.xlsx")
	if err := export.Write(ctx.Writer, h.salesService.Snapshot()); err != nil {
		if ctx.Writer.Written() {
			h.logger.Error("failed to write workbook", zap.Error(err))
			return
		}
		ctx.Header("Content-Type", "")
		ctx.Header("Content-Disposition", "")
		h.writeError(ctx, err, "failed to export ledger")
	}
}
