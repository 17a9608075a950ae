package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/handler"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Paper    *handler.PaperHandler
	Section  *handler.SectionHandler
	Question *handler.QuestionHandler
	Template *handler.TemplateHandler
	Catalog  *handler.CatalogHandler
	Preview  *handler.PreviewHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// renderLimit may be nil to leave rendering unthrottled.
func SetupRouter(handlers *Handlers, renderLimit *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	var render []gin.HandlerFunc
	if renderLimit != nil {
		render = append(render, renderLimit.Middleware())
	}

	v1 := router.Group("/api/v1", middleware.RequireBearer())

	// ─── 1. Question Types & Form Checks ───────────────────────────────
	v1.GET("/question-types", middleware.CacheControl(300), handlers.Question.ListQuestionTypes)
	v1.POST("/questions/validate", handlers.Question.ValidateQuestion)

	// ─── 2. Papers & Drafts ────────────────────────────────────────────
	papers := v1.Group("/papers/:id", middleware.NoStore())
	{
		papers.GET("", handlers.Paper.LoadPaper)
		papers.GET("/draft", handlers.Paper.GetDraft)
		papers.DELETE("/draft", handlers.Paper.DiscardDraft)
		papers.GET("/outline", handlers.Paper.GetOutline)
		papers.POST("/actions", handlers.Paper.DispatchAction)
		papers.POST("/undo", handlers.Paper.Undo)
		papers.POST("/save", handlers.Paper.SavePaper)
		papers.GET("/export", handlers.Paper.ExportPaper)
		papers.POST("/import", handlers.Paper.ImportPaper)
		papers.GET("/render", append(render, handlers.Paper.RenderPaper)...)

		// ─── 3. Sections, Groups & Questions ───────────────────────────
		papers.POST("/sections", handlers.Section.CreateSection)
		papers.PUT("/sections/:section_id", handlers.Section.UpdateSection)
		papers.DELETE("/sections/:section_id", handlers.Section.DeleteSection)

		papers.POST("/sections/:section_id/groups", handlers.Section.CreateGroup)
		papers.PUT("/groups/:group_id", handlers.Section.UpdateGroup)
		papers.DELETE("/groups/:group_id", handlers.Section.DeleteGroup)

		papers.POST("/groups/:group_id/questions", handlers.Question.CreateQuestion)
		papers.PUT("/questions/:question_id", handlers.Question.UpdateQuestion)
		papers.DELETE("/questions/:question_id", handlers.Question.DeleteQuestion)
	}

	// ─── 4. Templates ──────────────────────────────────────────────────
	templates := v1.Group("/templates")
	{
		templates.GET("", handlers.Template.ListTemplates)
		templates.POST("", handlers.Template.CreateTemplate)
		templates.GET("/:id", handlers.Template.GetTemplate)
		templates.PUT("/:id", handlers.Template.UpdateTemplate)
		templates.DELETE("/:id", handlers.Template.DeleteTemplate)
		templates.POST("/:id/instantiate", handlers.Template.InstantiateTemplate)
	}

	// ─── 5. Catalogue ──────────────────────────────────────────────────
	for _, res := range []model.Resource{model.ResourceClasses, model.ResourceSubjects, model.ResourceStudyMaterials} {
		g := v1.Group("/" + string(res))
		g.GET("", handlers.Catalog.List(res))
		g.POST("", handlers.Catalog.Create(res))
		g.PUT("/:id", handlers.Catalog.Update(res))
		g.DELETE("/:id", handlers.Catalog.Delete(res))
	}

	// ─── 6. Live Preview ───────────────────────────────────────────────
	router.GET("/ws/v1/papers/:id/preview", middleware.RequireBearer(), handlers.Preview.Preview)

	return router
}
