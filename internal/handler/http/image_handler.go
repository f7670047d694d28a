package httphandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	imageapp "github.com/lllypuk/imghost/internal/application/image"
	"github.com/lllypuk/imghost/internal/domain/image"
	"github.com/lllypuk/imghost/internal/domain/uuid"
	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

// ImageResponse represents image metadata. The delete key is never exposed.
type ImageResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	FileName string `json:"file_name"`
	Created  string `json:"created"`
}

// ImageListResponse is one page of images.
type ImageListResponse struct {
	Images []ImageResponse `json:"images"`
	Total  int             `json:"total"`
	Count  int             `json:"count"`
	Page   int             `json:"page"`
}

// ImageService defines the interface for image operations.
type ImageService interface {
	ListImages(ctx context.Context, query imageapp.ListImagesQuery) (imageapp.ImagesListResult, error)
	GetImage(ctx context.Context, query imageapp.GetImageQuery) (*image.Image, error)
	DeleteImage(ctx context.Context, cmd imageapp.DeleteImageCommand) error
}

// ImageHandler handles image metadata requests.
type ImageHandler struct {
	imageService ImageService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(imageService ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// RegisterRoutes registers image routes with the API group.
func (h *ImageHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/images", h.List)
	g.GET("/images/:id", h.Get)
	g.DELETE("/images/:id", h.Delete)
}

// List handles GET /api/v1/images?count=&page=&user_id=.
func (h *ImageHandler) List(c echo.Context) error {
	count, page, err := parsePagination(c)
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_PAGINATION", err.Error())
	}

	var owner uuid.UUID
	if raw := c.QueryParam("user_id"); raw != "" {
		owner, err = uuid.ParseUUID(raw)
		if err != nil {
			return httpserver.RespondErrorWithCode(
				c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
		}
	}

	result, err := h.imageService.ListImages(c.Request().Context(), imageapp.ListImagesQuery{
		UserID: owner,
		Count:  count,
		Page:   page,
	})
	if err != nil {
		return handleImageError(c, err)
	}

	images := make([]ImageResponse, 0, len(result.Images))
	for _, img := range result.Images {
		images = append(images, ToImageResponse(img))
	}

	return httpserver.RespondOK(c, ImageListResponse{
		Images: images,
		Total:  result.Total,
		Count:  result.Count,
		Page:   result.Page,
	})
}

// Get handles GET /api/v1/images/:id.
func (h *ImageHandler) Get(c echo.Context) error {
	imageID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_IMAGE_ID", "invalid image ID format")
	}

	img, err := h.imageService.GetImage(c.Request().Context(), imageapp.GetImageQuery{ImageID: imageID})
	if err != nil {
		return handleImageError(c, err)
	}

	return httpserver.RespondOK(c, ToImageResponse(img))
}

// Delete handles DELETE /api/v1/images/:id?key=.
func (h *ImageHandler) Delete(c echo.Context) error {
	imageID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_IMAGE_ID", "invalid image ID format")
	}

	err := h.imageService.DeleteImage(c.Request().Context(), imageapp.DeleteImageCommand{
		ImageID:   imageID,
		DeleteKey: c.QueryParam("key"),
	})
	if err != nil {
		return handleImageError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

func handleImageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, imageapp.ErrImageNotFound):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "IMAGE_NOT_FOUND", "image not found")
	case errors.Is(err, imageapp.ErrInvalidDeleteKey):
		return httpserver.RespondErrorWithCode(
			c, http.StatusForbidden, "INVALID_DELETE_KEY", "delete key does not match")
	case isValidationError(err):
		return respondValidationError(c, err)
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToImageResponse converts a domain Image to ImageResponse.
func ToImageResponse(img *image.Image) ImageResponse {
	return ImageResponse{
		ID:       img.ID().String(),
		UserID:   img.UserID().String(),
		FileName: img.FileName(),
		Created:  img.Created().Format(time.RFC3339),
	}
}
