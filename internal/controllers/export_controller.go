package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/services"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportController struct {
	Exports *services.ExportService
	Log     *zap.Logger
}

func (ec *ExportController) DownloadPoints(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	data, err := ec.Exports.ExportPointsCSV(c.Request.Context(), id)
	if err != nil {
		respondError(c, ec.Log, err, "Subject not found")
		return
	}
	attachment(c, fmt.Sprintf("points_subject_%d.csv", id), csvContentType, data)
}

func (ec *ExportController) DownloadTaskLogs(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	data, err := ec.Exports.ExportTaskLogsCSV(c.Request.Context(), id)
	if err != nil {
		respondError(c, ec.Log, err, "Subject not found")
		return
	}
	attachment(c, fmt.Sprintf("tasklogs_subject_%d.csv", id), csvContentType, data)
}

func (ec *ExportController) DownloadAll(c *gin.Context) {
	data, err := ec.Exports.ExportAllPointsCSV(c.Request.Context())
	if err != nil {
		respondError(c, ec.Log, err, "No subjects found")
		return
	}
	attachment(c, "all_points.csv", csvContentType, data)
}

func (ec *ExportController) DownloadAllXLSX(c *gin.Context) {
	data, err := ec.Exports.ExportAllPointsXLSX(c.Request.Context())
	if err != nil {
		respondError(c, ec.Log, err, "No subjects found")
		return
	}
	attachment(c, "all_points.xlsx", xlsxContentType, data)
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
