package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type MeasurementController struct {
	Measurements *services.MeasurementService
	Log          *zap.Logger
}

type savePointsRequest struct {
	ID     FlexibleID             `json:"id"`
	Points []services.PointSample `json:"points"`
}

func (mc *MeasurementController) SavePoints(c *gin.Context) {
	var req savePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	n, err := mc.Measurements.SavePoints(c.Request.Context(), services.SavePointsRequest{
		SubjectID: req.ID.Uint(),
		Points:    req.Points,
	})
	if err != nil {
		respondError(c, mc.Log, err, "Subject not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "saved": n})
}

func (mc *MeasurementController) GetUserPoints(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	points, err := mc.Measurements.GetUserPoints(c.Request.Context(), id)
	if err != nil {
		respondError(c, mc.Log, err, "Subject not found")
		return
	}
	c.JSON(http.StatusOK, points)
}
