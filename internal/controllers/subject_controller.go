package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/repository"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

type SubjectController struct {
	Subjects *services.SubjectService
	Log      *zap.Logger
}

// GetSubjects lists subjects. study_id narrows to one study ("none" selects
// subjects without a study) and q searches name and surname.
func (sc *SubjectController) GetSubjects(c *gin.Context) {
	filter := repository.SubjectFilter{Query: c.Query("q")}
	if raw := strings.TrimSpace(c.Query("study_id")); raw != "" {
		if strings.EqualFold(raw, "none") {
			filter.WithoutStudy = true
		} else {
			id, ok := parseID(raw)
			if !ok {
				errorJSON(c, http.StatusBadRequest, "invalid study_id")
				return
			}
			filter.StudyID = &id
		}
	}

	subjects, err := sc.Subjects.ListSubjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, sc.Log, err, "")
		return
	}
	c.JSON(http.StatusOK, subjects)
}

func (sc *SubjectController) DeleteSubject(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := sc.Subjects.DeleteSubject(c.Request.Context(), id); err != nil {
		respondError(c, sc.Log, err, "Subject not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Subject deleted"})
}
