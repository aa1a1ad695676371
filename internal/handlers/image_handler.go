package handlers

import (
	"todoapi/internal/apperr"
	"todoapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ImageHandler handles classified uploads and serving them back.
type ImageHandler struct {
	service *services.ImageService
}

func NewImageHandler(service *services.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

func (h *ImageHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	mlRoutes := router.Group("/ml", auth)
	mlRoutes.Post("/predict", h.HandlePredict)
	mlRoutes.Get("/myImg/:name", h.HandleGetImage)
}

// HandlePredict classifies and stores the multipart field "image".
func (h *ImageHandler) HandlePredict(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.Validation("Multipart field 'image' is required", map[string]string{"image": "required"})
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := h.service.Predict(c.UserContext(), userID, fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// HandleGetImage serves one of the caller's stored images.
func (h *ImageHandler) HandleGetImage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	data, contentType, err := h.service.Open(c.UserContext(), userID, c.Params("name"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
