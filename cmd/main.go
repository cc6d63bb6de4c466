package main

import (
	"log"
	"os"

	"github.com/bird3325/hankki-sub000/config"
	"github.com/bird3325/hankki-sub000/controllers"
	"github.com/bird3325/hankki-sub000/routes"
	"github.com/bird3325/hankki-sub000/services"
	"github.com/bird3325/hankki-sub000/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.InitDB()
	utils.InitS3()
	utils.InitSES()

	db := config.DB

	hub := services.NewRealtimeHub()

	push, err := services.NewPushService(db)
	if err != nil {
		log.Printf("push service disabled: %v", err)
		push = nil
	}

	family := services.NewFamilyService(db)
	settings := services.NewSettingsService(db)
	meals := services.NewMealService(db, family)
	feed := services.NewFeedService(db, family)
	stats := services.NewStatsService(db, settings)
	babyStats := services.NewBabyStatsService(db, family)
	templates := services.NewTemplateService(db)

	services.InitEventDeps(db, hub, push, family)

	analyzer := services.NewGeminiService()
	labels, err := services.NewRekognitionService()
	if err != nil {
		log.Printf("label hints disabled: %v", err)
		labels = nil
	}
	entry := services.NewEntryService(analyzer, labels, meals, utils.UploadBase64Image, settings)

	r := gin.Default()
	routes.SetupRoutes(r, routes.Controllers{
		Meals:     controllers.NewMealController(meals),
		Feed:      controllers.NewFeedController(feed),
		Stats:     controllers.NewStatsController(stats, babyStats),
		Entry:     controllers.NewEntryController(entry, templates, family),
		Family:    controllers.NewFamilyController(family),
		Templates: controllers.NewTemplateController(templates, meals),
		User:      controllers.NewUserController(settings),
		Devices:   controllers.NewDeviceController(push),
		Realtime:  controllers.NewRealtimeController(hub),
		Upload:    controllers.NewUploadController(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("hankki backend listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
