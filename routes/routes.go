package routes

import (
	"github.com/bird3325/hankki-sub000/controllers"
	"github.com/bird3325/hankki-sub000/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Meals     *controllers.MealController
	Feed      *controllers.FeedController
	Stats     *controllers.StatsController
	Entry     *controllers.EntryController
	Family    *controllers.FamilyController
	Templates *controllers.TemplateController
	User      *controllers.UserController
	Devices   *controllers.DeviceController
	Realtime  *controllers.RealtimeController
	Upload    *controllers.UploadController
}

func SetupRoutes(r *gin.Engine, c Controllers) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/guest", controllers.GuestLogin)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(), middlewares.MaintenanceMiddleware())
	{
		user := api.Group("/user")
		{
			user.GET("/profile", c.User.GetProfile)
			user.PATCH("/profile", c.User.UpdateProfile)
			user.GET("/settings", c.User.GetSettings)
			user.PATCH("/settings", c.User.UpdateSettings)
		}

		meals := api.Group("/meals")
		{
			meals.GET("", c.Meals.ListOwn)
			meals.GET("/:id", c.Meals.Get)
			meals.PATCH("/:id", c.Meals.Update)
			meals.DELETE("/:id", c.Meals.Delete)
			meals.POST("/:id/hide", c.Meals.RemoveFromFeed)
			meals.POST("/:id/like", c.Meals.Like)
			meals.DELETE("/:id/like", c.Meals.Unlike)
			meals.POST("/:id/comments", c.Meals.Comment)
			meals.POST("/:id/reaction", c.Meals.CycleReaction)
		}

		feed := api.Group("/feed")
		{
			feed.GET("/family", c.Feed.Family)
			feed.GET("/baby", c.Feed.Baby)
			feed.GET("/diary", c.Feed.Diary)
		}

		stats := api.Group("/stats")
		{
			stats.GET("/fasting", c.Stats.Fasting)
			stats.GET("/daily", c.Stats.Daily)
			stats.GET("/streak", c.Stats.Streak)
			stats.GET("/weekly", c.Stats.Weekly)
			stats.GET("/monthly", c.Stats.Monthly)
			stats.GET("/burned", c.Stats.Burned)
			stats.GET("/baby/:id/growth", c.Stats.BabyGrowth)
		}

		entry := api.Group("/entry")
		{
			entry.POST("", c.Entry.Start)
			entry.POST("/:sid/analyze", c.Entry.Analyze)
			entry.POST("/:sid/location", c.Entry.Location)
			entry.POST("/:sid/reanalyze", c.Entry.Reanalyze)
			entry.POST("/:sid/template/:tid", c.Entry.FromTemplate)
			entry.POST("/:sid/manual", c.Entry.Manual)
			entry.PATCH("/:sid", c.Entry.Edit)
			entry.POST("/:sid/baby", c.Entry.BabyMode)
			entry.POST("/:sid/save", c.Entry.Save)
		}

		family := api.Group("/family")
		{
			family.GET("", c.Family.List)
			family.GET("/primary", c.Family.Primary)
			family.POST("", c.Family.Create)
			family.POST("/join", c.Family.Join)
			family.DELETE("/:id/membership", c.Family.Leave)
			family.POST("/:id/invite", c.Family.Invite)
			family.POST("/:id/babies", c.Family.AddBaby)
			family.PATCH("/babies/:id", c.Family.UpdateBaby)
			family.DELETE("/babies/:id", c.Family.DeleteBaby)
		}

		templates := api.Group("/templates")
		{
			templates.GET("", c.Templates.List)
			templates.POST("", c.Templates.SaveFromMeal)
			templates.DELETE("/:id", c.Templates.Delete)
		}

		api.POST("/devices", c.Devices.Register)
		api.POST("/upload", c.Upload.Upload)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("", c.Realtime.Connect)
	}
}
