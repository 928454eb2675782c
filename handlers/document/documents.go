package document

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

// DocumentHandler handles document-related requests
type DocumentHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	mediaService *media.Service
	audit        *audit.Recorder
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(db *gorm.DB, mediaService *media.Service) *DocumentHandler {
	return &DocumentHandler{
		db:           db,
		validator:    validation.NewValidator(),
		mediaService: mediaService,
		audit:        audit.NewRecorder(db),
	}
}

var listOptions = query.Options{
	OwnerColumn:   "documents.teacher_id",
	SearchColumns: []string{"documents.title", "documents.file_name"},
	OrderColumn:   "documents.created_at",
	DefaultLimit:  10,
}

// CreateDocumentRequest represents the multipart form for uploading a document
type CreateDocumentRequest struct {
	Title    string `form:"title" validate:"required,min=2,max=255"`
	CourseID *uint  `form:"course_id" validate:"omitempty,min=1"`
}

// UpdateDocumentRequest represents the multipart form for updating document metadata
type UpdateDocumentRequest struct {
	Title    *string `form:"title" validate:"omitempty,min=2,max=255"`
	CourseID *uint   `form:"course_id" validate:"omitempty,min=1"`
}

// ListDocuments handles GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	db := h.db
	if courseID := c.Query("course_id", ""); courseID != "" {
		db = db.Where("documents.course_id = ?", courseID)
	}

	result, err := query.List[model.Document](db, listOptions, query.Params{
		OwnerID: teacherID,
		Page:    page,
		Limit:   limit,
		Search:  search,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch documents")
	}

	pagination := response.CalculatePagination(page, limit, result.Total)
	return response.Paginated(c, result.Items, pagination)
}

// GetDocument handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)
	id := c.Params("id")

	var document model.Document
	if err := h.db.Where("teacher_id = ?", teacherID).First(&document, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to fetch document")
	}

	return response.Success(c, document)
}

// CreateDocument handles POST /api/v1/documents. The multipart "file" part
// is required; its name, size and content type are recorded with the row.
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Title = validation.SanitizeString(req.Title)

	// A course association must point at the teacher's own course
	if req.CourseID != nil {
		var course model.Course
		if err := h.db.Where("teacher_id = ?", teacherID).First(&course, *req.CourseID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Course not found")
			}
			return response.InternalServerError(c, "Failed to verify course")
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A document file is required")
	}

	src, err := file.Open()
	if err != nil {
		return response.BadRequest(c, "Could not read document file")
	}
	key, url, upErr := h.mediaService.UploadFile(c.Context(), storage.PrefixDocuments, file.Filename, src)
	src.Close()
	if upErr != nil {
		if upErr == media.ErrStorageDisabled {
			return response.ServiceUnavailable(c, "File storage is not configured")
		}
		log.Printf("document upload failed: %v", upErr)
		return response.BadGateway(c, "Failed to upload document")
	}

	document := model.Document{
		TeacherID: teacherID,
		CourseID:  req.CourseID,
		Title:     req.Title,
		FileURL:   url,
		FilePath:  key,
		FileName:  file.Filename,
		FileSize:  file.Size,
		FileType:  storage.ContentTypeFor(file.Filename),
	}

	if err := h.db.Create(&document).Error; err != nil {
		return response.InternalServerError(c, "Failed to create document")
	}

	h.audit.Record(teacherID, "create", "document", document.ID, nil, c.IP())

	return response.Created(c, document)
}

// UpdateDocument handles PUT /api/v1/documents/:id. A new file replaces the
// stored object; metadata-only updates leave the object untouched.
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var document model.Document
	if err := h.db.Where("teacher_id = ?", teacherID).First(&document, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to fetch document")
	}

	var req UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	previous := document

	if req.Title != nil {
		document.Title = validation.SanitizeString(*req.Title)
	}
	if req.CourseID != nil {
		var course model.Course
		if err := h.db.Where("teacher_id = ?", teacherID).First(&course, *req.CourseID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Course not found")
			}
			return response.InternalServerError(c, "Failed to verify course")
		}
		document.CourseID = req.CourseID
	}

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read document file")
		}
		key, url, upErr := h.mediaService.ReplaceFile(c.Context(), storage.PrefixDocuments, file.Filename, document.FilePath, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload document")
		}
		document.FileURL = url
		document.FilePath = key
		document.FileName = file.Filename
		document.FileSize = file.Size
		document.FileType = storage.ContentTypeFor(file.Filename)
	}

	if err := h.db.Save(&document).Error; err != nil {
		return response.InternalServerError(c, "Failed to update document")
	}

	h.audit.Record(teacherID, "update", "document", document.ID, previous, c.IP())

	return response.Success(c, document)
}

// DeleteDocument handles DELETE /api/v1/documents/:id. The stored object is
// removed best-effort after the row is gone.
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var document model.Document
	if err := h.db.Where("teacher_id = ?", teacherID).First(&document, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to fetch document")
	}

	if err := h.db.Delete(&document).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete document")
	}

	if document.FilePath != "" {
		if err := h.mediaService.DeleteObject(c.Context(), document.FilePath); err != nil {
			log.Printf("failed to delete document object %s: %v", document.FilePath, err)
		}
	}

	h.audit.Record(teacherID, "delete", "document", document.ID, document, c.IP())

	return response.SuccessWithMessage(c, "Document deleted", nil)
}
