package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	app "date-classifier/internal/application"
)

//go:embed templates/*.html
var templates embed.FS

type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

func New(addr, sessionSecret string, forms *app.FormService, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(forms, sessionSecret, log),
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1 MB
		},
		log: log,
	}

	log.Info("Server created successfully", zap.String("address", addr))

	return server
}

// NewRouter собирает маршруты страницы формы, JSON API и служебных эндпоинтов.
func NewRouter(forms *app.FormService, sessionSecret string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxRequestBody

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionCookie, store))
	// Превью уже сжато в JPEG, метрики отдаёт promhttp
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/preview/", "/metrics"})))

	router.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/*.html")))

	h := NewHandler(forms, log)

	router.GET("/", h.Index)
	router.POST("/select", h.SelectPage)
	router.POST("/submit", h.SubmitPage)
	router.POST("/clear", h.ClearPage)
	router.GET("/preview/:id", h.Preview)

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/state", h.State)
		api.POST("/select", h.Select)
		api.POST("/submit", h.Submit)
		api.POST("/clear", h.Clear)
	}

	return router
}

func (s *Server) Run() error {
	s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
