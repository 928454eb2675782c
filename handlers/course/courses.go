package course

import (
	"log"
	"strconv"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/audit"
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/derslig/teacher-panel-api/services/storage"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/derslig/teacher-panel-api/utils/query"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	mediaService *media.Service
	audit        *audit.Recorder
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, mediaService *media.Service) *CourseHandler {
	return &CourseHandler{
		db:           db,
		validator:    validation.NewValidator(),
		mediaService: mediaService,
		audit:        audit.NewRecorder(db),
	}
}

var listOptions = query.Options{
	OwnerColumn:   "courses.teacher_id",
	SearchColumns: []string{"courses.title", "courses.description", "courses.subject"},
	OrderColumn:   "courses.created_at",
	DefaultLimit:  10,
}

// CreateCourseRequest represents the multipart form for creating a course
type CreateCourseRequest struct {
	Title       string `form:"title" validate:"required,min=2,max=255"`
	Description string `form:"description" validate:"omitempty,max=2000"`
	Grade       string `form:"grade" validate:"omitempty,oneof=7 8 9 10 11 12"`
	Subject     string `form:"subject" validate:"omitempty,max=100"`
}

// UpdateCourseRequest represents the multipart form for updating a course.
// Absent fields keep their current values.
type UpdateCourseRequest struct {
	Title       *string `form:"title" validate:"omitempty,min=2,max=255"`
	Description *string `form:"description" validate:"omitempty,max=2000"`
	Grade       *string `form:"grade" validate:"omitempty,oneof=7 8 9 10 11 12"`
	Subject     *string `form:"subject" validate:"omitempty,max=100"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	result, err := query.List[model.Course](h.db, listOptions, query.Params{
		OwnerID: teacherID,
		Page:    page,
		Limit:   limit,
		Search:  search,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	pagination := response.CalculatePagination(page, limit, result.Total)
	return response.Paginated(c, result.Items, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)
	id := c.Params("id")

	var course model.Course
	if err := h.db.Where("teacher_id = ?", teacherID).First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses. Multipart form with an optional
// "thumbnail" image file; the thumbnail is uploaded before the row is written
// so a failed upload never leaves a course without its image.
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)
	req.Subject = validation.SanitizeString(req.Subject)

	course := model.Course{
		TeacherID:   teacherID,
		Title:       req.Title,
		Description: req.Description,
		Grade:       req.Grade,
		Subject:     req.Subject,
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read thumbnail file")
		}
		key, url, upErr := h.mediaService.UploadFile(c.Context(), storage.PrefixCourseThumbnails, file.Filename, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload thumbnail")
		}
		course.Thumbnail = url
		course.ThumbnailKey = key
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	h.audit.Record(teacherID, "create", "course", course.ID, nil, c.IP())

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id. Last write wins; a new
// thumbnail replaces the old object.
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var course model.Course
	if err := h.db.Where("teacher_id = ?", teacherID).First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	previous := course

	if req.Title != nil {
		course.Title = validation.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		course.Description = validation.SanitizeString(*req.Description)
	}
	if req.Grade != nil {
		course.Grade = *req.Grade
	}
	if req.Subject != nil {
		course.Subject = validation.SanitizeString(*req.Subject)
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read thumbnail file")
		}
		key, url, upErr := h.mediaService.ReplaceFile(c.Context(), storage.PrefixCourseThumbnails, file.Filename, course.ThumbnailKey, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload thumbnail")
		}
		course.Thumbnail = url
		course.ThumbnailKey = key
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.audit.Record(teacherID, "update", "course", course.ID, previous, c.IP())

	return response.Success(c, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id. Videos and documents that
// reference the course are intentionally left in place.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var course model.Course
	if err := h.db.Where("teacher_id = ?", teacherID).First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	if course.ThumbnailKey != "" {
		if err := h.mediaService.DeleteObject(c.Context(), course.ThumbnailKey); err != nil {
			log.Printf("failed to delete course thumbnail %s: %v", course.ThumbnailKey, err)
		}
	}

	h.audit.Record(teacherID, "delete", "course", course.ID, course, c.IP())

	return response.SuccessWithMessage(c, "Course deleted", nil)
}
