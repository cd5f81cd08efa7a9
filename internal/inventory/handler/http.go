package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/export"
	"github.com/fekuna/omnipos-inventory-service/internal/middleware"
	"github.com/fekuna/omnipos-inventory-service/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPHandler exposes the inventory core on the admin REST API. It shares
// the catalog enrichment of the gRPC handler.
type HTTPHandler struct {
	svc *InventoryHandler
}

func NewHTTPHandler(svc *InventoryHandler) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.POST("", h.create)
	items.GET("", h.list)
	items.POST("/batch-delete", h.batchDelete)
	items.GET("/:id", h.get)
	items.PATCH("/:id", h.update)
	items.DELETE("/:id", h.delete)

	items.POST("/:id/operations", h.apply)
	items.POST("/:id/receive", h.stockCommand(h.svc.uc.Receive))
	items.POST("/:id/sell", h.stockCommand(h.svc.uc.Sell))
	items.POST("/:id/write-off", h.stockCommand(h.svc.uc.WriteOff))
	items.POST("/:id/adjust", h.stockCommand(h.svc.uc.Adjust))
	items.POST("/:id/count", h.stockCount)
	items.GET("/:id/transactions", h.transactions)
	items.GET("/:id/ledger/verify", h.verify)

	rg.POST("/transfers", h.transfer)
	rg.POST("/operations/batch", h.batchApply)
	rg.GET("/statistics", h.statistics)
	rg.GET("/alerts", h.alerts)
	rg.GET("/export", h.export)
	rg.POST("/import", h.restore)
}

func bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		middleware.AbortWithError(c, apperror.New(apperror.KindValidation, "malformed query", err))
		return false
	}
	return true
}

func (h *HTTPHandler) create(c *gin.Context) {
	var input dto.CreateItemInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	item, err := h.svc.uc.CreateInventoryItem(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *HTTPHandler) list(c *gin.Context) {
	var filters dto.InventoryFilters
	if !bindQuery(c, &filters) {
		return
	}
	res, err := h.svc.listItems(c.Request.Context(), &filters)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) get(c *gin.Context) {
	item, err := h.svc.uc.GetInventoryItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) update(c *gin.Context) {
	var input dto.UpdateItemInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	input.ID = c.Param("id")
	item, err := h.svc.uc.UpdateInventoryItem(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) delete(c *gin.Context) {
	if err := h.svc.uc.DeleteInventoryItem(c.Request.Context(), c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) batchDelete(c *gin.Context) {
	var input dto.BatchDeleteInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	if err := validation.Struct(&input); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Results: h.svc.uc.BatchDeleteInventoryItems(c.Request.Context(), input.IDs)})
}

func (h *HTTPHandler) apply(c *gin.Context) {
	var input dto.ApplyOperationInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	input.ItemID = c.Param("id")
	res, err := h.svc.uc.ApplyOperation(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type stockCall func(context.Context, *dto.StockInput) (*dto.OperationResult, error)

func (h *HTTPHandler) stockCommand(call stockCall) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input dto.StockInput
		if !middleware.BindJSON(c, &input) {
			return
		}
		input.ItemID = c.Param("id")
		res, err := call(c.Request.Context(), &input)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func (h *HTTPHandler) stockCount(c *gin.Context) {
	var input dto.StockCountInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	input.ItemID = c.Param("id")
	res, err := h.svc.uc.StockCount(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *HTTPHandler) transactions(c *gin.Context) {
	var filters dto.TransactionFilters
	if !bindQuery(c, &filters) {
		return
	}
	txns, err := h.svc.uc.ListTransactions(c.Request.Context(), c.Param("id"), filters.Range())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionsResponse{Transactions: txns})
}

func (h *HTTPHandler) verify(c *gin.Context) {
	report, err := h.svc.uc.VerifyLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *HTTPHandler) transfer(c *gin.Context) {
	var input dto.TransferInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	res, err := h.svc.uc.Transfer(c.Request.Context(), &input)
	if err != nil {
		h.svc.logger.Error("transfer failed", zap.String("product_id", input.ProductID), zap.Error(err))
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *HTTPHandler) batchApply(c *gin.Context) {
	var input dto.BatchApplyInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	if err := validation.Struct(&input); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Results: h.svc.uc.BatchApply(c.Request.Context(), input.Operations)})
}

func (h *HTTPHandler) statistics(c *gin.Context) {
	var filters dto.StatisticsFilters
	if !bindQuery(c, &filters) {
		return
	}
	stats, err := h.svc.uc.GetStatistics(c.Request.Context(), &filters)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) alerts(c *gin.Context) {
	var filters dto.AlertFilters
	if !bindQuery(c, &filters) {
		return
	}
	res, err := h.svc.listAlerts(c.Request.Context(), &filters)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	snap, err := h.svc.uc.Export(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.%s", snap.GeneratedAt.UTC().Format("20060102T150405Z"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, format, snap); err != nil {
		h.svc.logger.Error("failed to write export", zap.String("format", string(format)), zap.Error(err))
	}
}

func (h *HTTPHandler) restore(c *gin.Context) {
	snap, err := export.ReadJSON(c.Request.Body)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	start := time.Now()
	if err := h.svc.uc.Restore(c.Request.Context(), snap); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	h.svc.logger.Info("inventory restored",
		zap.Int("items", len(snap.Items)),
		zap.Int("transactions", len(snap.Transactions)),
		zap.Duration("elapsed", time.Since(start)),
	)
	c.JSON(http.StatusCreated, restoreResponse{Items: len(snap.Items), Transactions: len(snap.Transactions)})
}
