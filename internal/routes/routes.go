package routes

import (
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/controllers"
	"github.com/zaqqye/gazetrack_backend/internal/middleware"
	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/services"
	"github.com/zaqqye/gazetrack_backend/internal/views"
	"github.com/zaqqye/gazetrack_backend/internal/ws"
)

const sessionName = "gazetrack_session"

// Deps are the shared resources handlers are built from.
type Deps struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
	Hub *ws.MonitoringHub
	// ActiveStudy is the study new subjects are registered under. May be nil.
	ActiveStudy *models.Study
}

func Register(r *gin.Engine, d Deps) error {
	tmpl, err := views.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.SecureHeaders(gin.Mode() != gin.ReleaseMode))

	store := cookie.NewStore([]byte(d.Cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   d.Cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// Services
	userSvc := services.NewUserService(d.DB, d.Log)
	subjectSvc := services.NewSubjectService(d.DB, d.Log)
	studySvc := services.NewStudyService(d.DB, d.Log)
	var notifier services.Notifier
	if d.Hub != nil {
		notifier = d.Hub
	}
	measurementSvc := services.NewMeasurementService(d.DB, d.Log, notifier)
	taskLogSvc := services.NewTaskLogService(d.DB, d.Log)
	exportSvc := services.NewExportService(d.DB, d.Log)

	r.Use(middleware.UserLoader(userSvc, d.Cfg.Auth.JWTSecret, d.Log))

	// Controllers
	tokenTTL := time.Duration(d.Cfg.Auth.TokenTTLMinutes) * time.Minute
	if tokenTTL <= 0 {
		tokenTTL = 60 * time.Minute
	}
	authCtrl := &controllers.AuthController{Users: userSvc, JWTSecret: d.Cfg.Auth.JWTSecret, TokenTTL: tokenTTL, Log: d.Log}
	userCtrl := &controllers.UserController{Users: userSvc, Log: d.Log}
	subjectCtrl := &controllers.SubjectController{Subjects: subjectSvc, Log: d.Log}
	studyCtrl := &controllers.StudyController{Studies: studySvc, Log: d.Log}
	measurementCtrl := &controllers.MeasurementController{Measurements: measurementSvc, Log: d.Log}
	taskLogCtrl := &controllers.TaskLogController{TaskLogs: taskLogSvc, Log: d.Log}
	exportCtrl := &controllers.ExportController{Exports: exportSvc, Log: d.Log}
	cfgCtrl := &controllers.ConfigController{Cfg: d.Cfg, ActiveStudy: d.ActiveStudy, Log: d.Log}
	pagesCtrl := &controllers.PagesController{
		Subjects:     subjectSvc,
		Studies:      studySvc,
		Measurements: measurementSvc,
		ActiveStudy:  d.ActiveStudy,
		Log:          d.Log,
	}

	limiter := loginLimiter(d.Cfg.Server.LoginRateLimit)
	authRequired := middleware.AuthRequired()

	// Public pages
	r.GET("/login", authCtrl.ShowLogin)
	r.POST("/login", limiter, authCtrl.Login)
	r.GET("/logout", authCtrl.Logout)
	r.GET("/", pagesCtrl.Index)
	r.POST("/", pagesCtrl.Register)
	r.GET("/gaze-tracking", pagesCtrl.GazeTracking)
	r.GET("/fin-medicion", pagesCtrl.Finished)

	// Protected pages
	pages := r.Group("/", authRequired)
	{
		pages.GET("/estudios", pagesCtrl.StudiesPage)
		pages.GET("/sujetos", pagesCtrl.SubjectsPage)
		pages.GET("/resultados", pagesCtrl.Results)
		pages.GET("/visualizacion", pagesCtrl.Visualization)
	}

	api := r.Group("/api")
	if cors := middleware.CORS(d.Cfg.Server.AllowedOrigins); cors != nil {
		api.Use(cors)
	}

	// Public API, used by the tracker page
	{
		api.GET("/config", cfgCtrl.Get)
		api.GET("/tasks", cfgCtrl.Tasks)
		api.POST("/save-points", measurementCtrl.SavePoints)
		api.POST("/save-tasklogs", taskLogCtrl.SaveTaskLogs)
		api.GET("/users/count", userCtrl.Count)
		api.POST("/users/create", userCtrl.Create)
		api.POST("/auth/token", limiter, authCtrl.Token)
	}

	protected := api.Group("", authRequired)
	{
		protected.GET("/get-subjects", subjectCtrl.GetSubjects)
		protected.DELETE("/subjects/:id", subjectCtrl.DeleteSubject)
		protected.GET("/get-user-points", measurementCtrl.GetUserPoints)
		protected.GET("/get-user-tasklogs", taskLogCtrl.GetUserTaskLogs)

		protected.GET("/download-points", exportCtrl.DownloadPoints)
		protected.GET("/download-tasklogs", exportCtrl.DownloadTaskLogs)
		protected.GET("/download-all", exportCtrl.DownloadAll)
		protected.GET("/download-all.xlsx", exportCtrl.DownloadAllXLSX)

		protected.GET("/studies", studyCtrl.ListStudies)
		protected.POST("/studies", studyCtrl.CreateStudy)
		protected.GET("/studies/:id", studyCtrl.GetStudy)
		protected.PUT("/studies/:id", studyCtrl.UpdateStudy)
		protected.DELETE("/studies/:id", studyCtrl.DeleteStudy)
	}

	if d.Hub != nil {
		r.GET("/ws/monitoring", authRequired, ws.MonitoringHandler(d.Hub, d.Cfg.Server.AllowedOrigins))
	}
	return nil
}

func loginLimiter(perMinute uint) gin.HandlerFunc {
	if perMinute == 0 {
		perMinute = 5
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: perMinute,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).Round(time.Second).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}
