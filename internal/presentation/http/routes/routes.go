package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/posprint/internal/config"
	"github.com/sangkips/posprint/internal/presentation/http/handler"
	"github.com/sangkips/posprint/internal/presentation/http/middleware"
	"github.com/sangkips/posprint/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	// JWTManager is nil when JWT_SECRET is unset.
	JWTManager  *utils.JWTManager
	RateLimiter *middleware.ClientRateLimiter
	Cfg         *config.Config
	Logger      *slog.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")
	{
		printer := v1.Group("/printer")
		printer.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			printer.Use(deps.RateLimiter.Middleware())
		}
		registerPrinterRoutes(printer, h)
	}

	return router
}

func registerPrinterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/print", h.Printer.Print)
	rg.POST("/test", h.Printer.TestPrint)
	rg.POST("/label", h.Printer.PrintLabel)
	rg.POST("/preview", h.Printer.Preview)
	rg.GET("/printers", h.Printer.ListPrinters)
	rg.GET("/status", h.Printer.GetStatus)
	rg.GET("/jobs", h.Printer.ListJobs)
	rg.GET("/jobs/export", h.Printer.ExportJobs)
}
