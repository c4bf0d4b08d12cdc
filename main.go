package main

import (
	"log"
	"os"

	"standwithnepal-server/routes"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeMedia()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)
	app.Use(utils.Sessions.Handler())

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	api := app.Party("/api", utils.RateLimitMiddleware)
	{
		api.Get("/issues", routes.IssuesGet)
		api.Post("/issues", routes.IssuesPost)

		api.Get("/auth", routes.AuthHandler)
		api.Post("/auth", routes.AuthHandler)

		api.Get("/locations", routes.LocationsHandler)

		api.Get("/notifications", utils.AuthenticatedMiddleware, routes.NotificationsHandler)
		api.Post("/notifications", utils.AuthenticatedMiddleware, routes.NotificationsHandler)

		api.Get("/analytics", routes.AnalyticsHandler)

		api.Post("/upload", routes.UploadMedia)

		admin := api.Party("/admin", utils.AdminOnlyMiddleware)
		{
			admin.Get("/", routes.AdminHandler)
			admin.Post("/", routes.AdminHandler)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
