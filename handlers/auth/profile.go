package auth

import (
	"log"

	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/derslig/teacher-panel-api/services/storage"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	teacher, ok := middleware.GetTeacher(c)
	if !ok || teacher == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, toTeacherResponse(teacher))
}

// UpdateProfile handles PUT /api/v1/auth/profile. Multipart form: name and
// expertise fields plus optional thumbnail and cover image files; a new image
// replaces the previous object, whose deletion is best-effort.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	teacher, ok := middleware.GetTeacher(c)
	if !ok || teacher == nil {
		return response.Unauthorized(c, "Not authenticated")
	}

	updates := map[string]interface{}{}

	if name := validation.SanitizeString(c.FormValue("name")); name != "" {
		updates["name"] = name
	}
	if expertise := validation.SanitizeString(c.FormValue("expertise")); expertise != "" {
		updates["expertise"] = expertise
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read thumbnail file")
		}
		key, url, upErr := h.mediaService.ReplaceFile(c.Context(), storage.PrefixTeacherImages, file.Filename, teacher.ThumbnailKey, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			log.Printf("thumbnail upload failed: %v", upErr)
			return response.BadGateway(c, "Failed to upload thumbnail")
		}
		updates["thumbnail"] = url
		updates["thumbnail_key"] = key
	}

	if file, err := c.FormFile("cover_img"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read cover image file")
		}
		key, url, upErr := h.mediaService.ReplaceFile(c.Context(), storage.PrefixTeacherImages, file.Filename, teacher.CoverImgKey, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			log.Printf("cover image upload failed: %v", upErr)
			return response.BadGateway(c, "Failed to upload cover image")
		}
		updates["cover_img"] = url
		updates["cover_img_key"] = key
	}

	if len(updates) == 0 {
		return response.Success(c, toTeacherResponse(teacher))
	}

	if err := h.db.Model(teacher).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toTeacherResponse(teacher))
}
