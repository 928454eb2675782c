package middleware

import (
	"strings"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/utils/auth"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		tokenString := parts[1]

		// Validate token
		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Check if it's an access token
		if claims.TokenType != "access" {
			return response.Unauthorized(c, "Invalid token type")
		}

		// Check if token is revoked (blacklisted)
		isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		// Load teacher from database and verify token version
		var teacher model.Teacher
		if err := m.db.First(&teacher, claims.TeacherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Unauthorized(c, "Account not found")
			}
			return response.InternalServerError(c, "Failed to load account")
		}

		// Check if token version matches
		if teacher.TokenVersion != claims.TokenVersion {
			return response.Unauthorized(c, "Token has been invalidated")
		}

		// Store teacher info in context
		c.Locals("teacher_id", claims.TeacherID)
		c.Locals("teacher_email", claims.Email)
		c.Locals("claims", claims)
		c.Locals("teacher", &teacher)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// GetTeacherID extracts the authenticated teacher's ID from context
func GetTeacherID(c *fiber.Ctx) (uint, bool) {
	teacherID := c.Locals("teacher_id")
	if teacherID == nil {
		return 0, false
	}
	id, ok := teacherID.(uint)
	return id, ok
}

// GetTeacher extracts the full teacher record from context
func GetTeacher(c *fiber.Ctx) (*model.Teacher, bool) {
	teacher := c.Locals("teacher")
	if teacher == nil {
		return nil, false
	}
	t, ok := teacher.(*model.Teacher)
	return t, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
