package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type StudyController struct {
	Studies *services.StudyService
	Log     *zap.Logger
}

type createStudyRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	PrototypeURL       string `json:"prototype_url"`
	PrototypeImagePath string `json:"prototype_image_path"`
}

// updateStudyRequest leaves absent fields untouched; "" clears an optional one.
type updateStudyRequest struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	PrototypeURL       *string `json:"prototype_url"`
	PrototypeImagePath *string `json:"prototype_image_path"`
}

func (sc *StudyController) ListStudies(c *gin.Context) {
	studies, err := sc.Studies.ListStudies(c.Request.Context())
	if err != nil {
		respondError(c, sc.Log, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": studies, "meta": gin.H{"total": len(studies)}})
}

func (sc *StudyController) CreateStudy(c *gin.Context) {
	var req createStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	study, err := sc.Studies.CreateStudy(c.Request.Context(), repository.StudyInput{
		Name:               req.Name,
		Description:        config.Optional(req.Description),
		PrototypeURL:       config.Optional(req.PrototypeURL),
		PrototypeImagePath: config.Optional(req.PrototypeImagePath),
	})
	if err != nil {
		respondError(c, sc.Log, err, "")
		return
	}
	c.JSON(http.StatusCreated, study)
}

func (sc *StudyController) GetStudy(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	study, err := sc.Studies.GetStudy(c.Request.Context(), id)
	if err != nil {
		respondError(c, sc.Log, err, "Study not found")
		return
	}
	c.JSON(http.StatusOK, study)
}

func (sc *StudyController) UpdateStudy(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req updateStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	study, err := sc.Studies.UpdateStudy(c.Request.Context(), id, repository.StudyUpdate{
		Name:               req.Name,
		Description:        req.Description,
		PrototypeURL:       req.PrototypeURL,
		PrototypeImagePath: req.PrototypeImagePath,
	})
	if err != nil {
		respondError(c, sc.Log, err, "Study not found")
		return
	}
	c.JSON(http.StatusOK, study)
}

func (sc *StudyController) DeleteStudy(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := sc.Studies.DeleteStudy(c.Request.Context(), id); err != nil {
		respondError(c, sc.Log, err, "Study not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Study deleted"})
}
