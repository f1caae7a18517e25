package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/permissions"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews and their comments.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers the nested review and comment routes. Ownership is
// checked by the service once the target has been loaded.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviews := router.Group("/titles/:title_id/reviews", middleware.Permit(permissions.AuthorOrStaff))
	reviews.Get("/", h.HandleListReviews)
	reviews.Post("/", h.HandleCreateReview)
	reviews.Get("/:review_id", h.HandleGetReview)
	reviews.Patch("/:review_id", h.HandleUpdateReview)
	reviews.Delete("/:review_id", h.HandleDeleteReview)

	comments := reviews.Group("/:review_id/comments")
	comments.Get("/", h.HandleListComments)
	comments.Post("/", h.HandleCreateComment)
	comments.Get("/:comment_id", h.HandleGetComment)
	comments.Patch("/:comment_id", h.HandleUpdateComment)
	comments.Delete("/:comment_id", h.HandleDeleteComment)
}

// HandleListReviews lists the reviews of a title.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.Params("title_id"))
	if err != nil {
		return respondError(c, err, "retrieve reviews")
	}
	return c.JSON(reviews)
}

// HandleGetReview retrieves one review of a title.
func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.service.GetReview(c.Params("title_id"), c.Params("review_id"))
	if err != nil {
		return respondError(c, err, "retrieve review")
	}
	return c.JSON(review)
}

// HandleCreateReview posts the current user's review of a title.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	review, err := h.service.CreateReview(middleware.CurrentUser(c), c.Params("title_id"), in)
	if err != nil {
		return respondError(c, err, "create review")
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleUpdateReview partially updates a review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var patch services.ReviewPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}
	review, err := h.service.UpdateReview(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), patch)
	if err != nil {
		return respondError(c, err, "update review")
	}
	return c.JSON(review)
}

// HandleDeleteReview deletes a review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	err := h.service.DeleteReview(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"))
	if err != nil {
		return respondError(c, err, "delete review")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListComments lists the comments of a review.
func (h *ReviewHandler) HandleListComments(c *fiber.Ctx) error {
	comments, err := h.service.ListComments(c.Params("title_id"), c.Params("review_id"))
	if err != nil {
		return respondError(c, err, "retrieve comments")
	}
	return c.JSON(comments)
}

// HandleGetComment retrieves one comment.
func (h *ReviewHandler) HandleGetComment(c *fiber.Ctx) error {
	comment, err := h.service.GetComment(c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"))
	if err != nil {
		return respondError(c, err, "retrieve comment")
	}
	return c.JSON(comment)
}

// HandleCreateComment posts a comment on a review.
func (h *ReviewHandler) HandleCreateComment(c *fiber.Ctx) error {
	var in services.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	comment, err := h.service.CreateComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), in)
	if err != nil {
		return respondError(c, err, "create comment")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// HandleUpdateComment rewrites a comment.
func (h *ReviewHandler) HandleUpdateComment(c *fiber.Ctx) error {
	var in services.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	comment, err := h.service.UpdateComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"), in)
	if err != nil {
		return respondError(c, err, "update comment")
	}
	return c.JSON(comment)
}

// HandleDeleteComment deletes a comment.
func (h *ReviewHandler) HandleDeleteComment(c *fiber.Ctx) error {
	err := h.service.DeleteComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"))
	if err != nil {
		return respondError(c, err, "delete comment")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
