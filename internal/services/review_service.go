package services

import (
	"errors"
	"fmt"
	"net/http"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/permissions"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"

	"github.com/go-playground/validator/v10"
)

const duplicateReviewMessage = "You have already reviewed this title."

// ReviewInput is the write payload of a review.
type ReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

// ReviewPatch is a partial ReviewInput.
type ReviewPatch struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// CommentInput is the write payload of a comment.
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

// ReviewService handles reviews and their comments. Every operation first
// resolves the parent chain from the path so a missing parent aborts with
// apperrors.ErrNotFound.
type ReviewService struct {
	titleRepo   repositories.TitleRepository
	reviewRepo  repositories.ReviewRepository
	commentRepo repositories.CommentRepository
	policy      permissions.Policy
	validate    *validator.Validate
}

// NewReviewService creates a new ReviewService.
func NewReviewService(titleRepo repositories.TitleRepository, reviewRepo repositories.ReviewRepository, commentRepo repositories.CommentRepository) *ReviewService {
	return &ReviewService{
		titleRepo:   titleRepo,
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
		policy:      permissions.AuthorOrStaff,
		validate:    validation.New(),
	}
}

// ListReviews retrieves the reviews of a title.
func (s *ReviewService) ListReviews(titleID string) ([]models.Review, error) {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByTitle(titleID)
}

// GetReview retrieves a review of a title.
func (s *ReviewService) GetReview(titleID, reviewID string) (*models.Review, error) {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(titleID, reviewID)
}

// CreateReview stores actor's review of a title. A user can review a title
// only once; the pre-check gives a clean message and the unique index
// settles concurrent submissions.
func (s *ReviewService) CreateReview(actor *models.User, titleID string, in ReviewInput) (*models.Review, error) {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return nil, err
	}
	if err := authorize(s.policy, actor, http.MethodPost, nil); err != nil {
		return nil, err
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByAuthorAndTitle(actor.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewValidationError("non_field_errors", duplicateReviewMessage)
	}

	review := &models.Review{Text: in.Text, Score: in.Score, AuthorID: actor.ID, TitleID: titleID}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewValidationError("non_field_errors", duplicateReviewMessage)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.reviewRepo.GetByID(titleID, review.ID)
}

// UpdateReview applies a partial update; only the author, moderators and admins may.
func (s *ReviewService) UpdateReview(actor *models.User, titleID, reviewID string, patch ReviewPatch) (*models.Review, error) {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.policy, actor, http.MethodPatch, review); err != nil {
		return nil, err
	}

	in := ReviewInput{Text: review.Text, Score: review.Score}
	if patch.Text != nil {
		in.Text = *patch.Text
	}
	if patch.Score != nil {
		in.Score = *patch.Score
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	review.Text = in.Text
	review.Score = in.Score
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(titleID, reviewID)
}

// DeleteReview removes a review and its comments.
func (s *ReviewService) DeleteReview(actor *models.User, titleID, reviewID string) error {
	review, err := s.GetReview(titleID, reviewID)
	if err != nil {
		return err
	}
	if err := authorize(s.policy, actor, http.MethodDelete, review); err != nil {
		return err
	}
	return s.reviewRepo.Delete(review.ID)
}

// ListComments retrieves the comments of a review.
func (s *ReviewService) ListComments(titleID, reviewID string) ([]models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByReview(reviewID)
}

// GetComment retrieves a comment of a review.
func (s *ReviewService) GetComment(titleID, reviewID, commentID string) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(reviewID, commentID)
}

// CreateComment stores actor's comment on a review.
func (s *ReviewService) CreateComment(actor *models.User, titleID, reviewID string, in CommentInput) (*models.Comment, error) {
	if _, err := s.GetReview(titleID, reviewID); err != nil {
		return nil, err
	}
	if err := authorize(s.policy, actor, http.MethodPost, nil); err != nil {
		return nil, err
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	comment := &models.Comment{Text: in.Text, AuthorID: actor.ID, ReviewID: reviewID}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return s.commentRepo.GetByID(reviewID, comment.ID)
}

// UpdateComment rewrites a comment's text; only the author, moderators and admins may.
func (s *ReviewService) UpdateComment(actor *models.User, titleID, reviewID, commentID string, in CommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.policy, actor, http.MethodPatch, comment); err != nil {
		return nil, err
	}
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(reviewID, commentID)
}

// DeleteComment removes a comment.
func (s *ReviewService) DeleteComment(actor *models.User, titleID, reviewID, commentID string) error {
	comment, err := s.GetComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := authorize(s.policy, actor, http.MethodDelete, comment); err != nil {
		return err
	}
	return s.commentRepo.Delete(comment.ID)
}
