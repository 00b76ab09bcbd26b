package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/models"
)

// ConfigController exposes the tracker's runtime settings.
type ConfigController struct {
	Cfg         *config.Config
	ActiveStudy *models.Study
	Log         *zap.Logger
}

func (cc *ConfigController) Get(c *gin.Context) {
	resp := gin.H{
		"url_path": config.Optional(cc.Cfg.Study.PrototypeURL),
		"img_path": config.Optional(cc.Cfg.Study.PrototypeImagePath),
		"study_id": nil,
	}
	if s := cc.ActiveStudy; s != nil {
		resp["url_path"] = s.PrototypeURL
		resp["img_path"] = s.PrototypeImagePath
		resp["study_id"] = s.ID
	}
	c.JSON(http.StatusOK, resp)
}

// Tasks serves the task definitions file as JSON.
func (cc *ConfigController) Tasks(c *gin.Context) {
	tasks, err := config.LoadTasks(cc.Cfg.TasksPath())
	if errors.Is(err, os.ErrNotExist) {
		cc.Log.Warn("Tasks file missing", zap.String("path", cc.Cfg.TasksPath()))
		errorJSON(c, http.StatusNotFound, "tasks file not found")
		return
	}
	if err != nil {
		respondError(c, cc.Log, err, "")
		return
	}
	c.JSON(http.StatusOK, tasks)
}
