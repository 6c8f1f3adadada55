package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kartify/kartify-backend-go/config"
	"github.com/kartify/kartify-backend-go/database"
	"github.com/kartify/kartify-backend-go/handlers"
	"github.com/kartify/kartify-backend-go/httperr"
	custommw "github.com/kartify/kartify-backend-go/middleware"
	"github.com/kartify/kartify-backend-go/routes"
	"github.com/kartify/kartify-backend-go/utils"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize Echo
	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(custommw.Metrics())

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Outbound mail for password resets
	handlers.Mailer = utils.MailerFromEnv()

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3000")
	e.Logger.Fatal(e.Start(":" + port))
}
