package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kartify/kartify-backend-go/database"
	"github.com/kartify/kartify-backend-go/httperr"
	"github.com/kartify/kartify-backend-go/middleware"
	"github.com/kartify/kartify-backend-go/models"
	"github.com/kartify/kartify-backend-go/query"
	"github.com/kartify/kartify-backend-go/utils"
)

const (
	defaultResultPerPage = 5
	maxResultPerPage     = 50
)

// productFilterSchema declares which product fields list filters may target.
var productFilterSchema = query.Schema{
	"name":     query.String,
	"category": query.String,
	"price":    query.Number,
	"ratings":  query.Number,
	"stock":    query.Number,
}

type productInput struct {
	Name        string                `json:"name" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Price       float64               `json:"price" validate:"required,gt=0"`
	Category    string                `json:"category" validate:"required"`
	Stock       int                   `json:"stock" validate:"gte=0"`
	Images      []models.ProductImage `json:"images"`
}

func CreateProduct(c echo.Context) error {
	var input productInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	product := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Images:      input.Images,
		Reviews:     []models.Review{},
		User:        middleware.CurrentUser(c).ID,
		CreatedAt:   time.Now(),
	}

	_, err := database.DB.Collection("products").InsertOne(c.Request().Context(), product)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Successful",
		"product": product,
	})
}

func GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	collection := database.DB.Collection("products")

	resultPerPage := defaultResultPerPage
	if limit := c.QueryParam("limit"); limit != "" {
		if n := atoiOr(limit, 0); n >= 1 && n <= maxResultPerPage {
			resultPerPage = n
		}
	}

	q := query.New(c.QueryParams(), productFilterSchema).Search().Filter()

	// Match count before slicing
	productCount, err := collection.CountDocuments(ctx, q.Criteria())
	if err != nil {
		return err
	}

	q = q.Pagination(resultPerPage)
	cursor, err := collection.Find(ctx, q.Criteria(), q.FindOptions())
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       "Successful",
		"productCount":  productCount,
		"resultPerPage": resultPerPage,
		"products":      products,
	})
}

func GetProduct(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var product models.Product
	err = database.DB.Collection("products").FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product found successfully",
		"product": product,
	})
}

func UpdateProduct(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var input productInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	update := bson.M{"$set": bson.M{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price,
		"category":    input.Category,
		"stock":       input.Stock,
		"images":      input.Images,
	}}

	var product models.Product
	err = database.DB.Collection("products").FindOneAndUpdate(
		c.Request().Context(),
		bson.M{"_id": objID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "product updated successfully",
		"product": product,
	})
}

func DeleteProduct(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	result, err := database.DB.Collection("products").DeleteOne(c.Request().Context(), bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return httperr.NotFound("product not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "product deleted successfully",
	})
}

func GetProductReviews(c echo.Context) error {
	objID, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	var product models.Product
	err = database.DB.Collection("products").FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("product not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"reviews": product.Reviews,
	})
}

type reviewInput struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment"`
}

// CreateProductReview upserts the caller's review: a second submission from
// the same user replaces the first instead of adding a new entry.
func CreateProductReview(c echo.Context) error {
	var input reviewInput
	if err := c.Bind(&input); err != nil {
		return httperr.ValidationFailed("invalid request format")
	}
	if err := utils.Validate(&input); err != nil {
		return httperr.ValidationFailed(err.Error())
	}

	objID, err := parseObjectID(input.ProductID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	collection := database.DB.Collection("products")

	var product models.Product
	err = collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("product not found")
		}
		return err
	}

	user := middleware.CurrentUser(c)
	product.SetReview(user.ID, user.Name, input.Rating, input.Comment)

	if err := persistReviews(c, &product); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func DeleteReview(c echo.Context) error {
	productID, err := parseObjectID(c.QueryParam("productId"))
	if err != nil {
		return err
	}
	reviewID, err := parseObjectID(c.QueryParam("id"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	collection := database.DB.Collection("products")

	var product models.Product
	err = collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return httperr.NotFound("product not found")
		}
		return err
	}

	if !product.RemoveReview(reviewID) {
		return httperr.NotFound("review not found")
	}

	if err := persistReviews(c, &product); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// persistReviews writes the review list and both derived fields back in a
// single update; document-level atomicity keeps the write internally
// consistent, concurrent review writes are last-writer-wins.
func persistReviews(c echo.Context, product *models.Product) error {
	_, err := database.DB.Collection("products").UpdateOne(
		c.Request().Context(),
		bson.M{"_id": product.ID},
		bson.M{"$set": bson.M{
			"reviews":      product.Reviews,
			"ratings":      product.Ratings,
			"numOfReviews": product.NumOfReviews,
		}},
	)
	return err
}
