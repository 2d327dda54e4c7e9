package routes

import (
	"note-app/src/handlers"
	"note-app/src/interface/handler"
	"note-app/src/middleware"
	"note-app/src/repository"
	"note-app/src/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(
	r *gin.Engine,
	noteHandler *handler.NoteHandler,
	authHandler *handlers.AuthHandler,
	jwtService service.JWTService,
	userRepo repository.UserRepository,
) {
	api := r.Group("/api")

	// 認証エンドポイント（公開）
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	// 認証済みユーザー情報
	me := api.Group("/auth")
	me.Use(middleware.AuthMiddleware(jwtService, userRepo))
	{
		me.GET("/me", authHandler.Me)
	}

	// 認証が必要なノートAPIルート
	notes := api.Group("/notes")
	notes.Use(middleware.AuthMiddleware(jwtService, userRepo))
	{
		// ノートの基本CRUD操作
		notes.GET("", noteHandler.ListNotes)        // GET /api/notes
		notes.POST("", noteHandler.CreateNote)      // POST /api/notes
		notes.GET("/:id", noteHandler.GetNote)      // GET /api/notes/:id
		notes.PATCH("/:id", noteHandler.UpdateNote) // PATCH /api/notes/:id
		notes.DELETE("/:id", noteHandler.DeleteNote)

		// ソフトデリートからの復元
		notes.POST("/:id/restore", noteHandler.RestoreNote) // POST /api/notes/:id/restore
	}
}
