package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dittoaji/user-profile-service/internal/container"
	handlers "github.com/dittoaji/user-profile-service/internal/interface/http"
	"github.com/dittoaji/user-profile-service/internal/interface/middleware"
	"github.com/dittoaji/user-profile-service/pkg/helpers"
)

// UserModule wires the user CRUD handlers behind bearer auth and per-IP rate
// limiting under /users.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.JWT))
	users.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.GetByID)
		users.POST("", m.Handler.Create)
		users.PATCH("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
		users.POST("/:id/avatar", m.Handler.UploadAvatar)
	}
}
