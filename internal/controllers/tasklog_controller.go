package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type TaskLogController struct {
	TaskLogs *services.TaskLogService
	Log      *zap.Logger
}

type saveTaskLogsRequest struct {
	SubjectID FlexibleID              `json:"subject_id"`
	TaskLogs  []services.TaskLogEntry `json:"taskLogs"`
}

func (tc *TaskLogController) SaveTaskLogs(c *gin.Context) {
	var req saveTaskLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	n, err := tc.TaskLogs.SaveTaskLogs(c.Request.Context(), services.SaveTaskLogsRequest{
		SubjectID: req.SubjectID.Uint(),
		TaskLogs:  req.TaskLogs,
	})
	if err != nil {
		respondError(c, tc.Log, err, "Subject not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("%d task logs saved", n)})
}

func (tc *TaskLogController) GetUserTaskLogs(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	logs, err := tc.TaskLogs.GetUserTaskLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, tc.Log, err, "Subject not found")
		return
	}
	c.JSON(http.StatusOK, logs)
}
