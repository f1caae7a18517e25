package repositories

import (
	"fmt"

	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// ListByTitle retrieves the reviews of a title, newest first.
func (r *GORMReviewRepository) ListByTitle(titleID string) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.Preload("Author").
		Where("title_id = ?", titleID).
		Order("pub_date DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of title %s: %w", titleID, err)
	}
	return reviews, nil
}

// GetByID retrieves a review of the given title.
func (r *GORMReviewRepository) GetByID(titleID, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").
		Where("title_id = ?", titleID).
		First(&review, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("review with ID %s", id))
	}
	return &review, nil
}

// ExistsByAuthorAndTitle reports whether the author already reviewed the title.
func (r *GORMReviewRepository) ExistsByAuthorAndTitle(authorID, titleID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

// Create inserts a review. A second review by the same author for the same
// title fails with apperrors.ErrDuplicate from the unique index.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Omit("Author", "Title").Create(review).Error; err != nil {
		return translate(err, fmt.Sprintf("review of title %s by user %s", review.TitleID, review.AuthorID))
	}
	return nil
}

// Update writes the text and score of a review.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Model(&models.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"text":  review.Text,
		"score": review.Score,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(fmt.Sprintf("review with ID %s", review.ID))
	}
	return nil
}

// Delete removes a review and its comments.
func (r *GORMReviewRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of review %s: %w", id, err)
		}
		res := tx.Delete(&models.Review{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete review %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(fmt.Sprintf("review with ID %s", id))
		}
		return nil
	})
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

// ListByReview retrieves the comments of a review, newest first.
func (r *GORMCommentRepository) ListByReview(reviewID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.Preload("Author").
		Where("review_id = ?", reviewID).
		Order("pub_date DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of review %s: %w", reviewID, err)
	}
	return comments, nil
}

// GetByID retrieves a comment of the given review.
func (r *GORMCommentRepository) GetByID(reviewID, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").
		Where("review_id = ?", reviewID).
		First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("comment with ID %s", id))
	}
	return &comment, nil
}

// Create inserts a comment.
func (r *GORMCommentRepository) Create(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if err := r.db.Omit("Author", "Review").Create(comment).Error; err != nil {
		return translate(err, fmt.Sprintf("comment on review %s", comment.ReviewID))
	}
	return nil
}

// Update writes the text of a comment.
func (r *GORMCommentRepository) Update(comment *models.Comment) error {
	res := r.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Update("text", comment.Text)
	if res.Error != nil {
		return fmt.Errorf("failed to update comment %s: %w", comment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(fmt.Sprintf("comment with ID %s", comment.ID))
	}
	return nil
}

// Delete removes a comment.
func (r *GORMCommentRepository) Delete(id string) error {
	res := r.db.Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(fmt.Sprintf("comment with ID %s", id))
	}
	return nil
}
