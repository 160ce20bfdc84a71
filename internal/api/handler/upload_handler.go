package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

type UploadHandler struct {
	images ports.ImageService
}

func NewUploadHandler(images ports.ImageService) *UploadHandler {
	return &UploadHandler{images: images}
}

// Upload handles POST /upload.
//
// @Summary      Upload an image
// @Tags         uploads
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        img  formData  file  true  "Image file"
// @Success      200  {object}  uploadResponse
// @Failure      400  {object}  errorResponse
// @Router       /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("img")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return domain.NewValidationError("img", "No image uploaded")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.images.Upload(c.Request().Context(), ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, uploadResponse{Message: "Image uploaded successfully", URL: url})
}
