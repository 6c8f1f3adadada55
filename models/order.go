package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

type ShippingInfo struct {
	Address string `bson:"address" json:"address" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	Country string `bson:"country" json:"country" validate:"required"`
	PinCode string `bson:"pinCode" json:"pinCode" validate:"required"`
	PhoneNo string `bson:"phoneNo" json:"phoneNo" validate:"required"`
}

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product" validate:"required"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity" validate:"required,gt=0"`
}

type PaymentInfo struct {
	ID     string `bson:"id" json:"id"`
	Status string `bson:"status" json:"status"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	ShippingInfo  ShippingInfo       `bson:"shippingInfo" json:"shippingInfo" validate:"required"`
	OrderItems    []OrderItem        `bson:"orderItems" json:"orderItems" validate:"required,min=1,dive"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	ItemsPrice    float64            `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice      float64            `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice float64            `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	// Only totalPrice is written at creation; totalAmount is summed by the
	// admin listing but never set anywhere. Kept as-is pending a schema
	// decision from whoever owns the order model.
	TotalAmount float64     `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"`
	OrderStatus OrderStatus `bson:"orderStatus" json:"orderStatus"`
	PaidAt      time.Time   `bson:"paidAt" json:"paidAt"`
	DeliveredAt time.Time   `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
}
