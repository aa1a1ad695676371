package handlers

import (
	"strconv"

	"todoapi/internal/apperr"
	"todoapi/internal/models"
	"todoapi/internal/services"
	"todoapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// TodoHandler handles HTTP requests for the caller's todos.
type TodoHandler struct {
	service  *services.TodoService
	validate *validation.Validator
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service *services.TodoService, v *validation.Validator) *TodoHandler {
	return &TodoHandler{
		service:  service,
		validate: v,
	}
}

// RegisterRoutes registers the todo routes behind auth.
func (h *TodoHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	todoRoutes := router.Group("/todos", auth)
	todoRoutes.Post("/", h.HandleCreateTodo)
	todoRoutes.Get("/all", h.HandleGetTodos)
	todoRoutes.Get("/:id", h.HandleGetTodoByID)
	todoRoutes.Patch("/:id", h.HandleUpdateTodo)
	todoRoutes.Delete("/:id", h.HandleDeleteTodo)
}

func todoID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid todo ID", map[string]string{"id": raw})
	}
	return uint(id), nil
}

// HandleCreateTodo creates a todo owned by the caller.
func (h *TodoHandler) HandleCreateTodo(c *fiber.Ctx) error {
	ownerID, err := currentUser(c)
	if err != nil {
		return err
	}

	var in models.CreateTodoInput
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}

	todo, err := h.service.Create(c.UserContext(), ownerID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(todo)
}

// HandleGetTodos lists the caller's todos.
func (h *TodoHandler) HandleGetTodos(c *fiber.Ctx) error {
	ownerID, err := currentUser(c)
	if err != nil {
		return err
	}

	todos, err := h.service.List(c.UserContext(), ownerID)
	if err != nil {
		return err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return c.JSON(todos)
}

// HandleGetTodoByID retrieves a single todo of the caller.
func (h *TodoHandler) HandleGetTodoByID(c *fiber.Ctx) error {
	ownerID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := todoID(c)
	if err != nil {
		return err
	}

	todo, err := h.service.Get(c.UserContext(), id, ownerID)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

// HandleUpdateTodo applies a partial update.
func (h *TodoHandler) HandleUpdateTodo(c *fiber.Ctx) error {
	ownerID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := todoID(c)
	if err != nil {
		return err
	}

	var in models.UpdateTodoInput
	if err := parseBody(c, h.validate, &in); err != nil {
		return err
	}

	todo, err := h.service.Update(c.UserContext(), id, ownerID, in)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderETag, weakETag("todo", todo.ID))
	return c.JSON(todo)
}

func (h *TodoHandler) HandleDeleteTodo(c *fiber.Ctx) error {
	ownerID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := todoID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), id, ownerID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
