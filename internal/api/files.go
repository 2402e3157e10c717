package api

import (
	"errors"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/upload"
)

// UploadFile stores an uploaded image and returns its serving URL.
func (s *Server) UploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	url, err := s.Uploads.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrInvalidFileType):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, upload.ErrFileTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"url":      url,
		"filename": path.Base(url),
		"message":  "File uploaded successfully",
	})
}

// DeleteFile removes an uploaded file by its serving URL. A missing file
// is a business outcome, reported with success false.
func (s *Server) DeleteFile(c echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	deleted, err := s.Uploads.Delete(req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	message := "File deleted successfully"
	if !deleted {
		message = "File not found or already deleted"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": deleted,
		"message": message,
	})
}
