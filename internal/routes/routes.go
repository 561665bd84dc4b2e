package routes

import (
	"github.com/gin-gonic/gin"

	"authway/internal/handlers"
	"authway/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	verifyHandler *handlers.VerifyHandler,
	profileHandler *handlers.ProfileHandler,
) *gin.Engine {

	// ---- public
	r.POST("/signup", authHandler.SignUp)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.POST("/verify", verifyHandler.Verify)
	r.POST("/verify/resend", verifyHandler.Resend)
	r.POST("/logout", authHandler.Logout)

	profile := r.Group("/profile")
	{
		profile.GET("", profileHandler.GetProfile)
		profile.PATCH("", profileHandler.CompleteProfile)
		profile.PUT("/picture", profileHandler.AttachPicture)
	}

	return r
}
