package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/permissions"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for categories and genres.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the category and genre routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	permit := middleware.Permit(permissions.AdminOrReadOnly)

	categories := router.Group("/categories", permit)
	categories.Get("/", h.HandleListCategories)
	categories.Post("/", h.HandleCreateCategory)
	categories.Delete("/:slug", h.HandleDeleteCategory)

	genres := router.Group("/genres", permit)
	genres.Get("/", h.HandleListGenres)
	genres.Post("/", h.HandleCreateGenre)
	genres.Delete("/:slug", h.HandleDeleteGenre)
}

// HandleListCategories lists categories; ?search= filters by name.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.Query("search"))
	if err != nil {
		return respondError(c, err, "retrieve categories")
	}
	return c.JSON(categories)
}

// HandleCreateCategory creates a category.
func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var in services.SlugInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	category, err := h.service.CreateCategory(in)
	if err != nil {
		return respondError(c, err, "create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleDeleteCategory deletes a category; its titles are kept without one.
func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.Params("slug")); err != nil {
		return respondError(c, err, "delete category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListGenres lists genres; ?search= filters by name.
func (h *CatalogHandler) HandleListGenres(c *fiber.Ctx) error {
	genres, err := h.service.ListGenres(c.Query("search"))
	if err != nil {
		return respondError(c, err, "retrieve genres")
	}
	return c.JSON(genres)
}

// HandleCreateGenre creates a genre.
func (h *CatalogHandler) HandleCreateGenre(c *fiber.Ctx) error {
	var in services.SlugInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	genre, err := h.service.CreateGenre(in)
	if err != nil {
		return respondError(c, err, "create genre")
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// HandleDeleteGenre deletes a genre.
func (h *CatalogHandler) HandleDeleteGenre(c *fiber.Ctx) error {
	if err := h.service.DeleteGenre(c.Params("slug")); err != nil {
		return respondError(c, err, "delete genre")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
