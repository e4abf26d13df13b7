package routes

import (
	"net/http"
	"time"

	"laundrybook/handlers"
	"laundrybook/middleware"
	"laundrybook/services/session"
	"laundrybook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle collects everything route registration needs.
type HandlerBundle struct {
	Auth   *handlers.AuthHandler
	Board  *handlers.BoardHandler
	Admin  *handlers.AdminHandler
	Tokens session.TokenManager
}

// RegisterRoutes wires up the full HTTP surface.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterBoardRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}

// RegisterAuthRoutes registers the phone/OTP flow endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/send-code", hb.Auth.SendCodeHandler)
		api.POST("/resend-code", hb.Auth.ResendCodeHandler)
		api.POST("/change-number", hb.Auth.ChangeNumberHandler)
		api.POST("/verify", hb.Auth.VerifyCodeHandler)
		api.POST("/logout", hb.Auth.LogoutHandler)
	}
}

// RegisterBoardRoutes registers the slot board endpoints. All of them
// require an authenticated session.
func RegisterBoardRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Tokens))
		api.GET("", hb.Board.GetSlotsHandler)
		api.GET("/stream", hb.Board.StreamSlotsHandler)
		api.POST("/:id/reserve", hb.Board.ReserveSlotHandler)
	}
}

// RegisterAdminRoutes registers provisioning endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.POST("/slots", hb.Admin.CreateSlotsHandler)
		api.PUT("/profiles", hb.Admin.UpsertProfileHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}
