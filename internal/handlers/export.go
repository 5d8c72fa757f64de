package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/gymadmin/internal/services"
	"github.com/charlesng35/gymadmin/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler streams the permission matrix as a workbook.
type ExportHandler struct {
	exporter *services.PermissionExporter
	now      func() time.Time
}

func NewExportHandler(exporter *services.PermissionExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter, now: time.Now}
}

// GET /api/permissions/export
func (h *ExportHandler) Permissions(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exporter.Write(&buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("permissions-%s.xlsx", h.now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
