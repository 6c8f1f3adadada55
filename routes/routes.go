package routes

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kartify/kartify-backend-go/database"
	"github.com/kartify/kartify-backend-go/handlers"
	custommw "github.com/kartify/kartify-backend-go/middleware"
	"github.com/kartify/kartify-backend-go/models"
)

func SetupRoutes(e *echo.Echo) {
	auth := custommw.Authenticate(lookupUser)
	admin := custommw.AuthorizeRoles(models.RoleAdmin)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	// Product routes
	products := api.Group("/products")
	products.GET("", handlers.GetProducts)
	products.POST("", handlers.CreateProduct, auth, admin)
	products.PUT("/review", handlers.CreateProductReview, auth)
	products.DELETE("/reviews", handlers.DeleteReview, auth)
	products.GET("/:id", handlers.GetProduct)
	products.PUT("/:id", handlers.UpdateProduct, auth, admin)
	products.DELETE("/:id", handlers.DeleteProduct, auth, admin)
	products.GET("/:id/reviews", handlers.GetProductReviews)

	// User routes
	users := api.Group("/users")
	users.POST("/register", handlers.RegisterUser)
	users.POST("/login", handlers.LoginUser)
	users.GET("/logout", handlers.LogoutUser)
	users.POST("/forgot-password", handlers.ForgotPassword)
	users.PUT("/reset-password/:token", handlers.ResetPassword)
	users.GET("/profile", handlers.GetUserProfile, auth)
	users.PUT("/profile", handlers.UpdateUserProfile, auth)
	users.PUT("/password", handlers.UpdatePassword, auth)

	// Order routes
	orders := api.Group("/orders")
	orders.POST("", handlers.CreateOrder, auth)
	orders.GET("/mine", handlers.MyOrders, auth)
	orders.GET("/:id", handlers.GetOrder, auth)

	// Admin routes
	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.GET("/users", handlers.GetAllUsers)
	adminGroup.GET("/users/:id", handlers.GetUser)
	adminGroup.PUT("/users/:id", handlers.UpdateUserRole)
	adminGroup.DELETE("/users/:id", handlers.DeleteUser)
	adminGroup.GET("/orders", handlers.GetAllOrders)
	adminGroup.PUT("/orders/:id", handlers.UpdateOrder)
	adminGroup.DELETE("/orders/:id", handlers.DeleteOrder)
}

func lookupUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
