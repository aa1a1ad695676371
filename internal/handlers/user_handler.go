package handlers

import (
	"todoapi/internal/models"
	"todoapi/internal/services"
	"todoapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles registration, login and the caller's own account.
type UserHandler struct {
	users    *services.UserService
	tokens   *services.TokenService
	validate *validation.Validator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, tokens *services.TokenService, v *validation.Validator) *UserHandler {
	return &UserHandler{
		users:    users,
		tokens:   tokens,
		validate: v,
	}
}

// RegisterRoutes registers the user routes. Registration and login are
// public; the rest run behind auth.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/me", auth, h.HandleMe)
	userRoutes.Patch("/", auth, h.HandleUpdate)
	userRoutes.Delete("/", auth, h.HandleDelete)
}

// HandleRegister creates a user.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var in models.CreateUserInput
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), in)
	if err != nil {
		return err
	}

	c.Location("/users/me")
	c.Set(fiber.HeaderETag, weakETag("user", user.ID))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin checks the credentials and issues an access token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var in models.LoginInput
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}

	user, err := h.users.Authenticate(c.UserContext(), in.Name, in.Password)
	if err != nil {
		return err
	}
	return h.withToken(c, user)
}

// HandleMe returns the caller together with a fresh token.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	user, err := h.users.Find(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.withToken(c, user)
}

func (h *UserHandler) withToken(c *fiber.Ctx, user *models.User) error {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(models.UserWithToken{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

// HandleUpdate changes the caller's name and/or password.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	var in models.UpdateUserInput
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderETag, weakETag("user", user.ID))
	return c.JSON(user)
}

// HandleDelete removes the caller and all of their todos.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
