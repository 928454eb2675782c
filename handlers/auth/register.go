package auth

import (
	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/utils/auth"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest represents a teacher registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Expertise string `json:"expertise" validate:"omitempty,max=255"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Expertise = validation.SanitizeString(req.Expertise)

	// One account per email
	var existing model.Teacher
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to hash password")
	}

	teacher := model.Teacher{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Expertise:    req.Expertise,
	}

	if err := h.db.Create(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, toTeacherResponse(&teacher))
}
