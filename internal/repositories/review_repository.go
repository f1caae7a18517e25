package repositories

import (
	"yamdb/internal/models"
)

// ReviewRepository defines the interface for review data access.
// Lookups are scoped to the parent title so that a review is only reachable
// under the title it belongs to.
type ReviewRepository interface {
	ListByTitle(titleID string) ([]models.Review, error)
	GetByID(titleID, id string) (*models.Review, error)
	ExistsByAuthorAndTitle(authorID, titleID string) (bool, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id string) error
}

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	ListByReview(reviewID string) ([]models.Comment, error)
	GetByID(reviewID, id string) (*models.Comment, error)
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(id string) error
}
