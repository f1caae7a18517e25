package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user administration and /users/me.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the user routes with the Fiber app.
// /users/me is registered first so it is not captured by /:username.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/me", h.HandleGetMe)
	users.Patch("/me", h.HandleUpdateMe)
	users.Get("/", h.HandleListUsers)
	users.Post("/", h.HandleCreateUser)
	users.Get("/:username", h.HandleGetUser)
	users.Patch("/:username", h.HandleUpdateUser)
	users.Delete("/:username", h.HandleDeleteUser)
}

// HandleListUsers lists users; ?search= filters by username.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(middleware.CurrentUser(c), c.Query("search"))
	if err != nil {
		return respondError(c, err, "retrieve users")
	}
	return c.JSON(users)
}

// HandleCreateUser creates a user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.CreateUser(middleware.CurrentUser(c), in)
	if err != nil {
		return respondError(c, err, "create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUser retrieves a user by username.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(middleware.CurrentUser(c), c.Params("username"))
	if err != nil {
		return respondError(c, err, "retrieve user")
	}
	return c.JSON(user)
}

// HandleUpdateUser partially updates a user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var patch services.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.UpdateUser(middleware.CurrentUser(c), c.Params("username"), patch)
	if err != nil {
		return respondError(c, err, "update user")
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user with everything they wrote.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(middleware.CurrentUser(c), c.Params("username")); err != nil {
		return respondError(c, err, "delete user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetMe returns the caller's own profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user, err := h.service.GetMe(middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err, "retrieve profile")
	}
	return c.JSON(user)
}

// HandleUpdateMe edits the caller's own profile; role changes are ignored.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var patch services.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.UpdateMe(middleware.CurrentUser(c), patch)
	if err != nil {
		return respondError(c, err, "update profile")
	}
	return c.JSON(user)
}
