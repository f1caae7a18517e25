package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/permissions"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TitleHandler handles HTTP requests for titles.
type TitleHandler struct {
	service *services.TitleService
}

// NewTitleHandler creates a new TitleHandler.
func NewTitleHandler(service *services.TitleService) *TitleHandler {
	return &TitleHandler{service: service}
}

// RegisterRoutes registers the title routes with the Fiber app. Every route
// is gated individually so the nested review routes keep their own policy.
func (h *TitleHandler) RegisterRoutes(router fiber.Router) {
	permit := middleware.Permit(permissions.AdminOrReadOnly)

	titles := router.Group("/titles")
	titles.Get("/", permit, h.HandleListTitles)
	titles.Post("/", permit, h.HandleCreateTitle)
	titles.Get("/:title_id", permit, h.HandleGetTitle)
	titles.Patch("/:title_id", permit, h.HandleUpdateTitle)
	titles.Delete("/:title_id", permit, h.HandleDeleteTitle)
}

// HandleListTitles lists titles filtered by category, genre, name and year.
func (h *TitleHandler) HandleListTitles(c *fiber.Ctx) error {
	filter := repositories.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
		Year:     c.QueryInt("year"),
	}
	titles, err := h.service.ListTitles(filter)
	if err != nil {
		return respondError(c, err, "retrieve titles")
	}
	return c.JSON(titles)
}

// HandleGetTitle retrieves a single title by its ID.
func (h *TitleHandler) HandleGetTitle(c *fiber.Ctx) error {
	title, err := h.service.GetTitle(c.Params("title_id"))
	if err != nil {
		return respondError(c, err, "retrieve title")
	}
	return c.JSON(title)
}

// HandleCreateTitle creates a title.
func (h *TitleHandler) HandleCreateTitle(c *fiber.Ctx) error {
	var in services.TitleInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	title, err := h.service.CreateTitle(in)
	if err != nil {
		return respondError(c, err, "create title")
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}

// HandleUpdateTitle partially updates a title.
func (h *TitleHandler) HandleUpdateTitle(c *fiber.Ctx) error {
	var patch services.TitlePatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}
	title, err := h.service.UpdateTitle(c.Params("title_id"), patch)
	if err != nil {
		return respondError(c, err, "update title")
	}
	return c.JSON(title)
}

// HandleDeleteTitle deletes a title with its reviews and comments.
func (h *TitleHandler) HandleDeleteTitle(c *fiber.Ctx) error {
	if err := h.service.DeleteTitle(c.Params("title_id")); err != nil {
		return respondError(c, err, "delete title")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
