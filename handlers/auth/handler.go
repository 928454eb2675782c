package auth

import (
	"time"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/derslig/teacher-panel-api/utils/auth"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles registration, login, tokens and the teacher profile
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *auth.JWTManager
	blacklistService     *auth.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	mediaService         *media.Service
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, bruteForce *middleware.BruteForceProtection, mediaService *media.Service) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     auth.NewBlacklistService(db),
		bruteForceProtection: bruteForce,
		mediaService:         mediaService,
		validator:            validation.NewValidator(),
	}
}

// TeacherResponse is the public shape of a teacher account
type TeacherResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Expertise string    `json:"expertise"`
	Thumbnail string    `json:"thumbnail"`
	CoverImg  string    `json:"cover_img"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTeacherResponse(t *model.Teacher) TeacherResponse {
	return TeacherResponse{
		ID:        t.ID,
		Email:     t.Email,
		Name:      t.Name,
		Expertise: t.Expertise,
		Thumbnail: t.Thumbnail,
		CoverImg:  t.CoverImg,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
