package student

import (
	"strconv"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/audit"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/derslig/teacher-panel-api/utils/query"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StudentHandler handles student-related requests. The students collection
// is shared: listings are not filtered by the requesting teacher.
type StudentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	audit     *audit.Recorder
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		db:        db,
		validator: validation.NewValidator(),
		audit:     audit.NewRecorder(db),
	}
}

var listOptions = query.Options{
	SearchColumns: []string{"students.name", "students.email"},
	OrderColumn:   "students.created_at",
	DefaultLimit:  10,
}

// CreateStudentRequest represents the request body for registering a student
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateStudentRequest represents the request body for updating a student
type UpdateStudentRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// ListStudents handles GET /api/v1/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	db := h.db
	if verified := c.Query("verified", ""); verified != "" {
		db = db.Where("students.verified = ?", verified == "true")
	}

	result, err := query.List[model.Student](db, listOptions, query.Params{
		Page:   page,
		Limit:  limit,
		Search: search,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	pagination := response.CalculatePagination(page, limit, result.Total)
	return response.Paginated(c, result.Items, pagination)
}

// GetStudent handles GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /api/v1/students. New students start unverified.
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Name = validation.SanitizeString(req.Name)

	var existing model.Student
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return response.Conflict(c, "A student with this email already exists")
	}

	student := model.Student{
		TeacherID: teacherID,
		Name:      req.Name,
		Email:     req.Email,
	}

	if err := h.db.Create(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	h.audit.Record(teacherID, "create", "student", student.ID, nil, c.IP())

	return response.Created(c, student)
}

// UpdateStudent handles PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	previous := student

	if req.Name != nil {
		student.Name = validation.SanitizeString(*req.Name)
	}
	if req.Email != nil && *req.Email != student.Email {
		var existing model.Student
		if err := h.db.Where("email = ?", *req.Email).First(&existing).Error; err == nil {
			return response.Conflict(c, "A student with this email already exists")
		}
		student.Email = *req.Email
	}

	if err := h.db.Save(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	h.audit.Record(teacherID, "update", "student", student.ID, previous, c.IP())

	return response.Success(c, student)
}

// VerifyStudent handles PATCH /api/v1/students/:id/verify. Toggles the
// verification flag and returns the updated row.
func (h *StudentHandler) VerifyStudent(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	previous := student
	student.Verified = !student.Verified

	if err := h.db.Model(&student).Update("verified", student.Verified).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	h.audit.Record(teacherID, "verify", "student", student.ID, previous, c.IP())

	return response.Success(c, student)
}

// DeleteStudent handles DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if err := h.db.Delete(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	h.audit.Record(teacherID, "delete", "student", student.ID, student, c.IP())

	return response.SuccessWithMessage(c, "Student deleted", nil)
}
