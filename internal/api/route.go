package api

import (
	"CircuitEye/internal/api/middleware"
	"CircuitEye/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		authGroup := apiGroup.Group("/auth")
		{
			// 无需登录即可访问的接口
			authGroup.POST("/register", group.UserHandler.Register)
			authGroup.POST("/login", group.UserHandler.Login)

			loggedGroup := authGroup.Group("")
			loggedGroup.Use(middleware.AuthMiddleware())
			{
				loggedGroup.POST("/logout", group.UserHandler.Logout)
				loggedGroup.GET("/info", group.UserHandler.GetUserInfo)
			}
		}

		detectionGroup := apiGroup.Group("")
		detectionGroup.Use(middleware.AuthMiddleware())
		{
			detectionGroup.POST("/upload", group.DetectionHandler.Upload)
			detectionGroup.GET("/results", group.DetectionHandler.GetResults)
			detectionGroup.GET("/remaining-uploads", group.DetectionHandler.GetRemainingUploads)
			detectionGroup.GET("/dashboard", group.DashboardHandler.GetDashboard)
		}

		subscriptionGroup := apiGroup.Group("/subscription")
		{
			// 回调由签名而不是会话鉴权
			subscriptionGroup.POST("/webhook", group.SubscriptionHandler.Webhook)

			checkoutGroup := subscriptionGroup.Group("")
			checkoutGroup.Use(middleware.AuthMiddleware())
			{
				checkoutGroup.POST("/checkout", group.SubscriptionHandler.CreateCheckout)
			}
		}
	}

	return r
}
