package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductImage struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type Review struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User    primitive.ObjectID `bson:"user" json:"user"`
	Name    string             `bson:"name" json:"name"`
	Rating  int                `bson:"rating" json:"rating"`
	Comment string             `bson:"comment" json:"comment"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Description  string             `bson:"description" json:"description" validate:"required"`
	Price        float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Category     string             `bson:"category" json:"category" validate:"required"`
	Stock        int                `bson:"stock" json:"stock" validate:"gte=0"`
	Ratings      float64            `bson:"ratings" json:"ratings"`
	NumOfReviews int                `bson:"numOfReviews" json:"numOfReviews"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	Images       []ProductImage     `bson:"images" json:"images"`
	User         primitive.ObjectID `bson:"user,omitempty" json:"user"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// SetReview replaces the rating and comment of an existing review from the
// same user, or appends a new review. One review per user per product.
func (p *Product) SetReview(userID primitive.ObjectID, name string, rating int, comment string) {
	for i := range p.Reviews {
		if p.Reviews[i].User == userID {
			p.Reviews[i].Rating = rating
			p.Reviews[i].Comment = comment
			p.recalcRatings()
			return
		}
	}

	p.Reviews = append(p.Reviews, Review{
		ID:      primitive.NewObjectID(),
		User:    userID,
		Name:    name,
		Rating:  rating,
		Comment: comment,
	})
	p.recalcRatings()
}

// RemoveReview deletes the review with the given id. It reports whether a
// review was actually removed.
func (p *Product) RemoveReview(reviewID primitive.ObjectID) bool {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			p.Reviews = append(p.Reviews[:i], p.Reviews[i+1:]...)
			p.recalcRatings()
			return true
		}
	}
	return false
}

// recalcRatings recomputes numOfReviews and the average rating from the
// review list. Derived fields are never patched incrementally.
func (p *Product) recalcRatings() {
	p.NumOfReviews = len(p.Reviews)
	if len(p.Reviews) == 0 {
		p.Ratings = 0
		return
	}

	sum := 0
	for _, rev := range p.Reviews {
		sum += rev.Rating
	}
	p.Ratings = float64(sum) / float64(len(p.Reviews))
}
