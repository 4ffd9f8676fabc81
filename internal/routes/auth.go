package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/handlers"
)

func RegisterAuthRoutes(r gin.IRouter, h *handlers.Handler, auth gin.HandlerFunc) {
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	// logout needs the claims to revoke the token
	r.POST("/logout", auth, h.Logout)
}
