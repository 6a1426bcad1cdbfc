package routes

import (
	"kolayfit/controllers"
	"kolayfit/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected profile and onboarding routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetDietProfile)
		user.PUT("/profile", controllers.UpdateDietProfile)
		user.POST("/onboarding", controllers.CompleteOnboarding)
		user.GET("/assessment", controllers.GetAssessment)
	}

	goals := r.Group("/goals")
	goals.Use(middlewares.AuthMiddleware())
	{
		goals.GET("", controllers.GetGoals)
		goals.GET("/by-date", controllers.GetGoalsByDate)
		goals.POST("/recalculate", controllers.RecalculateGoals)
	}

	// Photo / name analysis verification sessions
	analysis := r.Group("/analysis")
	analysis.Use(middlewares.AuthMiddleware())
	{
		analysis.POST("", controllers.StartAnalysis)
		analysis.POST("/manual", controllers.ManualMealEntry)
		analysis.GET("/:id", controllers.GetAnalysis)
		analysis.POST("/:id/image", controllers.AnalyzeImage)
		analysis.POST("/:id/name", controllers.AnalyzeByName)
		analysis.POST("/:id/barcode", controllers.AnalyzeByBarcode)
		analysis.PUT("/:id/items/:index", controllers.EditAnalysisItem)
		analysis.DELETE("/:id/items/:index", controllers.RemoveAnalysisItem)
		analysis.POST("/:id/confirm", controllers.ConfirmAnalysis)
		analysis.POST("/:id/save", controllers.SaveAnalysis)
		analysis.POST("/:id/retry", controllers.RetryAnalysis)
		analysis.DELETE("/:id", controllers.AbandonAnalysis)
	}

	meals := r.Group("/meals")
	meals.Use(middlewares.AuthMiddleware())
	{
		meals.GET("", controllers.ListMealLogs)
		meals.GET("/totals", controllers.GetDailyTotals)
		meals.DELETE("/:id", controllers.DeleteMealLog)
	}

	diet := r.Group("/diet")
	diet.Use(middlewares.AuthMiddleware())
	{
		diet.GET("/plan", controllers.GetActiveDietPlan)
		diet.POST("/plan", controllers.GenerateDietPlan)
		diet.POST("/plan/regenerate", controllers.RegenerateDietPlan)
		diet.POST("/plan/ad-completed", controllers.PlanAdCompleted)
		diet.POST("/plan/ad-cancelled", controllers.PlanAdCancelled)
		diet.POST("/plan/replace-meal", controllers.ReplaceDietMeal)
	}

	ads := r.Group("/ads")
	ads.Use(middlewares.AuthMiddleware())
	{
		ads.GET("/check-limit", controllers.CheckAdLimit)
		ads.POST("/record-watch", controllers.RecordAdWatch)
	}

	return r
}
