package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportInventory handles GET /api/reports/inventory/export
func (h *Handlers) ExportInventory(c *gin.Context) {
	buf, err := h.services.Exports.InventoryReport(c.Request.Context(), tenantID(c), c.Query("store_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportTransfers handles GET /api/reports/transfers/export
func (h *Handlers) ExportTransfers(c *gin.Context) {
	buf, err := h.services.Exports.TransferReport(c.Request.Context(), tenantID(c),
		entity.TransferStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("transfers-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListAuditLogsRequest represents query parameters for listing audit logs
type ListAuditLogsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ListAuditLogs handles GET /api/audit-logs
func (h *Handlers) ListAuditLogs(c *gin.Context) {
	var req ListAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	logs, err := h.services.Audit.List(c.Request.Context(), tenantID(c), req.Limit, req.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, logs)
}
