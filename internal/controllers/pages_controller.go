package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/services"
)

// PagesController renders the HTML interface.
type PagesController struct {
	Subjects     *services.SubjectService
	Studies      *services.StudyService
	Measurements *services.MeasurementService
	// ActiveStudy is the study new subjects join; nil when none is configured.
	ActiveStudy *models.Study
	Log         *zap.Logger
}

func (pc *PagesController) activeStudyID() *uint {
	if pc.ActiveStudy == nil {
		return nil
	}
	id := pc.ActiveStudy.ID
	return &id
}

func (pc *PagesController) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Study": pc.ActiveStudy})
}

// Register creates a subject from the form and starts the measurement.
func (pc *PagesController) Register(c *gin.Context) {
	reg := services.SubjectRegistration{
		Name:    c.PostForm("nombre"),
		Surname: c.PostForm("apellido"),
		Age:     c.PostForm("edad"),
	}
	subject, err := pc.Subjects.RegisterSubject(c.Request.Context(), reg, pc.activeStudyID())
	if v, ok := services.IsValidation(err); ok {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{"Study": pc.ActiveStudy, "Error": v.Message, "Form": reg})
		return
	}
	if err != nil {
		pc.Log.Error("Failed to register subject", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to register subject")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/gaze-tracking?id=%d", subject.ID))
}

func (pc *PagesController) GazeTracking(c *gin.Context) {
	c.HTML(http.StatusOK, "embed.html", gin.H{"ID": c.Query("id"), "Study": pc.ActiveStudy})
}

func (pc *PagesController) Finished(c *gin.Context) {
	c.HTML(http.StatusOK, "fin.html", nil)
}

func (pc *PagesController) StudiesPage(c *gin.Context) {
	studies, err := pc.Studies.ListStudies(c.Request.Context())
	if err != nil {
		pc.Log.Error("Failed to list studies", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load studies")
		return
	}
	c.HTML(http.StatusOK, "estudios.html", gin.H{"Studies": studies, "ActiveStudy": pc.ActiveStudy})
}

func (pc *PagesController) SubjectsPage(c *gin.Context) {
	groups, err := pc.Subjects.GroupByStudy(c.Request.Context())
	if err != nil {
		pc.Log.Error("Failed to group subjects", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load subjects")
		return
	}
	c.HTML(http.StatusOK, "sujetos.html", gin.H{"Groups": groups})
}

// Results shows a subject's recorded points next to a scatter chart.
func (pc *PagesController) Results(c *gin.Context) {
	id, ok := parseID(c.Query("id"))
	if !ok {
		c.String(http.StatusBadRequest, "Invalid subject id")
		return
	}
	subject, err := pc.Subjects.GetSubjectByID(c.Request.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		c.String(http.StatusNotFound, "Subject not found")
		return
	}
	if err != nil {
		pc.Log.Error("Failed to load subject", zap.Uint("subject_id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load subject")
		return
	}
	points, err := pc.Measurements.GetDisplayPoints(c.Request.Context(), id)
	if err != nil {
		pc.Log.Error("Failed to load points", zap.Uint("subject_id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load points")
		return
	}

	chartJSON, err := json.Marshal(pointsChart(points).JSON())
	if err != nil {
		pc.Log.Error("Failed to build chart", zap.Error(err))
		chartJSON = []byte("{}")
	}
	c.HTML(http.StatusOK, "resultados.html", gin.H{
		"Subject":      subject,
		"Points":       points,
		"ChartOptions": template.JS(chartJSON),
	})
}

func (pc *PagesController) Visualization(c *gin.Context) {
	c.HTML(http.StatusOK, "visualizacion.html", nil)
}

func pointsChart(points []services.DisplayPoint) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Gaze and mouse positions"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	mouse := make([]opts.ScatterData, 0, len(points))
	gaze := make([]opts.ScatterData, 0, len(points))
	for _, p := range points {
		item := opts.ScatterData{Value: []interface{}{p.X, p.Y}}
		if p.Type == services.PointTypeMouse {
			mouse = append(mouse, item)
		} else {
			gaze = append(gaze, item)
		}
	}
	scatter.AddSeries("Mouse", mouse)
	scatter.AddSeries("Gaze", gaze)
	return scatter
}
