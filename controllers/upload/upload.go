package uploadController

import (
	"path/filepath"
	"strings"

	"lms/config"
	"lms/middleware"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".pdf": true, ".mp4": true,
}

const maxUploadSize = 50 << 20 // 50 MB

// UploadFile stores a course asset (thumbnail, material, video) under the
// public upload directory and returns its serving URL.
func UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No file uploaded!", nil)
	}

	if file.Size > maxUploadSize {
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "File too large!", nil)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File type not allowed!", nil)
	}

	savedName, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save file!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "File uploaded successfully!", fiber.Map{
		"filename": savedName,
		"url":      utils.GetFileURL(savedName),
	})
}
