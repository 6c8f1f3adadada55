package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetReview(t *testing.T) {
	t.Run("first review is appended and averaged", func(t *testing.T) {
		product := Product{}
		userID := primitive.NewObjectID()

		product.SetReview(userID, "alice", 4, "solid")

		require.Len(t, product.Reviews, 1)
		assert.Equal(t, 1, product.NumOfReviews)
		assert.Equal(t, 4.0, product.Ratings)
		assert.Equal(t, userID, product.Reviews[0].User)
		assert.False(t, product.Reviews[0].ID.IsZero())
	})

	t.Run("second review from same user replaces instead of duplicating", func(t *testing.T) {
		product := Product{}
		userID := primitive.NewObjectID()

		product.SetReview(userID, "alice", 4, "solid")
		firstID := product.Reviews[0].ID
		product.SetReview(userID, "alice", 2, "changed my mind")

		require.Len(t, product.Reviews, 1)
		assert.Equal(t, 1, product.NumOfReviews)
		assert.Equal(t, 2.0, product.Ratings)
		assert.Equal(t, 2, product.Reviews[0].Rating)
		assert.Equal(t, "changed my mind", product.Reviews[0].Comment)
		assert.Equal(t, firstID, product.Reviews[0].ID)
	})

	t.Run("reviews from different users average together", func(t *testing.T) {
		product := Product{}

		product.SetReview(primitive.NewObjectID(), "alice", 4, "")
		product.SetReview(primitive.NewObjectID(), "bob", 2, "")
		product.SetReview(primitive.NewObjectID(), "carol", 3, "")

		assert.Equal(t, 3, product.NumOfReviews)
		assert.Equal(t, 3.0, product.Ratings)
	})

	t.Run("replacing preserves the order of other entries", func(t *testing.T) {
		product := Product{}
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()

		product.SetReview(first, "alice", 5, "")
		product.SetReview(second, "bob", 1, "")
		product.SetReview(first, "alice", 3, "")

		require.Len(t, product.Reviews, 2)
		assert.Equal(t, first, product.Reviews[0].User)
		assert.Equal(t, second, product.Reviews[1].User)
		assert.Equal(t, 2.0, product.Ratings)
	})
}

func TestRemoveReview(t *testing.T) {
	t.Run("removes the entry and recomputes", func(t *testing.T) {
		product := Product{}
		product.SetReview(primitive.NewObjectID(), "alice", 5, "")
		product.SetReview(primitive.NewObjectID(), "bob", 1, "")
		target := product.Reviews[1].ID

		require.True(t, product.RemoveReview(target))

		assert.Equal(t, 1, product.NumOfReviews)
		assert.Equal(t, 5.0, product.Ratings)
	})

	t.Run("removing the last review yields zero, not NaN", func(t *testing.T) {
		product := Product{}
		product.SetReview(primitive.NewObjectID(), "alice", 5, "")

		require.True(t, product.RemoveReview(product.Reviews[0].ID))

		assert.Equal(t, 0, product.NumOfReviews)
		assert.Equal(t, 0.0, product.Ratings)
		assert.Empty(t, product.Reviews)
	})

	t.Run("unknown id removes nothing", func(t *testing.T) {
		product := Product{}
		product.SetReview(primitive.NewObjectID(), "alice", 5, "")

		assert.False(t, product.RemoveReview(primitive.NewObjectID()))
		assert.Equal(t, 1, product.NumOfReviews)
		assert.Equal(t, 5.0, product.Ratings)
	})
}
