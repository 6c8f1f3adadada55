package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kartify/kartify-backend-go/database"
	"github.com/kartify/kartify-backend-go/httperr"
	"github.com/kartify/kartify-backend-go/middleware"
	"github.com/kartify/kartify-backend-go/models"
	"github.com/kartify/kartify-backend-go/utils"
)

type orderInput struct {
	ShippingInfo  models.ShippingInfo `json:"shippingInfo" validate:"required"`
	OrderItems    []models.OrderItem  `json:"orderItems" validate:"required,min=1,dive"`
	PaymentInfo   models.PaymentInfo  `json:"paymentInfo"`
	ItemsPrice    float64             `json:"itemsPrice"`
	TaxPrice      float64             `json:"taxPrice"`
	ShippingPrice float64             `json:"shippingPrice"`
	TotalPrice    float64             `json:"totalPrice"`
}

func CreateOrder(c echo.Context) error {
	var input orderInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	order := models.Order{
		ID:            primitive.NewObjectID(),
		User:          middleware.CurrentUser(c).ID,
		ShippingInfo:  input.ShippingInfo,
		OrderItems:    input.OrderItems,
		PaymentInfo:   input.PaymentInfo,
		ItemsPrice:    input.ItemsPrice,
		TaxPrice:      input.TaxPrice,
		ShippingPrice: input.ShippingPrice,
		TotalPrice:    input.TotalPrice,
		OrderStatus:   models.OrderStatusProcessing,
		PaidAt:        time.Now(),
		CreatedAt:     time.Now(),
	}

	if _, err := database.DB.Collection("orders").InsertOne(c.Request().Context(), order); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Successful",
		"order":   order,
	})
}

func GetOrder(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	var order models.Order
	err = database.DB.Collection("orders").FindOne(ctx, bson.M{"_id": objID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("order not found with this id")
		}
		return err
	}

	// embed the owner's name and email alongside the order
	owner := echo.Map{}
	var user models.User
	if err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": order.User}).Decode(&user); err == nil {
		owner = echo.Map{"name": user.Name, "email": user.Email}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"order":   order,
		"user":    owner,
	})
}

func MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	cursor, err := database.DB.Collection("orders").Find(ctx, bson.M{"user": middleware.CurrentUser(c).ID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": orders})
}

func GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	cursor, err := database.DB.Collection("orders").Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return err
	}

	totalAmount := 0.0
	for _, order := range orders {
		totalAmount += order.TotalAmount
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"totalAmount": totalAmount,
		"orders":      orders,
	})
}

type updateOrderInput struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=Processing Shipped Delivered"`
}

func UpdateOrder(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var input updateOrderInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	ctx := c.Request().Context()
	ordersCol := database.DB.Collection("orders")

	// a collection query that only ever uses its first document; see DESIGN.md
	cursor, err := ordersCol.Find(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var order models.Order
	if !cursor.Next(ctx) {
		return httperr.NotFound("order not found with this id")
	}
	if err := cursor.Decode(&order); err != nil {
		return err
	}

	if order.OrderStatus == models.OrderStatusDelivered {
		return httperr.NotFound("you have already delivered this order")
	}

	productsCol := database.DB.Collection("products")
	for _, item := range order.OrderItems {
		_, err := productsCol.UpdateOne(
			ctx,
			bson.M{"_id": item.Product},
			bson.M{"$inc": bson.M{"stock": -item.Quantity}},
		)
		if err != nil {
			return err
		}
	}

	update := bson.M{"orderStatus": input.Status}
	if input.Status == models.OrderStatusDelivered {
		update["deliveredAt"] = time.Now()
	}

	if _, err := ordersCol.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": update}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func DeleteOrder(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	result, err := database.DB.Collection("orders").DeleteOne(c.Request().Context(), bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return httperr.NotFound("order not found with this id")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
