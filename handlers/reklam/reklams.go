package reklam

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/audit"
	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/derslig/teacher-panel-api/services/storage"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/derslig/teacher-panel-api/utils/query"
	"github.com/derslig/teacher-panel-api/utils/response"
	"github.com/derslig/teacher-panel-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReklamHandler handles promotional banner requests
type ReklamHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	mediaService *media.Service
	audit        *audit.Recorder
}

// NewReklamHandler creates a new reklam handler
func NewReklamHandler(db *gorm.DB, mediaService *media.Service) *ReklamHandler {
	return &ReklamHandler{
		db:           db,
		validator:    validation.NewValidator(),
		mediaService: mediaService,
		audit:        audit.NewRecorder(db),
	}
}

var listOptions = query.Options{
	OwnerColumn:   "reklams.teacher_id",
	SearchColumns: []string{"reklams.title", "reklams.description"},
	OrderColumn:   "reklams.created_at",
	DefaultLimit:  10,
}

// CreateReklamRequest represents the multipart form for creating a banner.
// Exactly one of the "image" or "video" file parts must be supplied.
type CreateReklamRequest struct {
	Title        string `form:"title" validate:"required,min=2,max=255"`
	Description  string `form:"description" validate:"omitempty,max=2000"`
	LinkType     string `form:"link_type" validate:"omitempty,oneof=course video document external none"`
	LinkTarget   string `form:"link_target" validate:"omitempty,max=2000"`
	DisplayOrder int    `form:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool  `form:"is_active"`
	Style        string `form:"style" validate:"omitempty,max=2000"` // JSON object
}

// UpdateReklamRequest represents the multipart form for updating a banner
type UpdateReklamRequest struct {
	Title        *string `form:"title" validate:"omitempty,min=2,max=255"`
	Description  *string `form:"description" validate:"omitempty,max=2000"`
	LinkType     *string `form:"link_type" validate:"omitempty,oneof=course video document external none"`
	LinkTarget   *string `form:"link_target" validate:"omitempty,max=2000"`
	DisplayOrder *int    `form:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool   `form:"is_active"`
	Style        *string `form:"style" validate:"omitempty,max=2000"`
}

func parseStyle(raw string) (datatypes.JSON, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ListReklams handles GET /api/v1/reklams
func (h *ReklamHandler) ListReklams(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	db := h.db
	if active := c.Query("is_active", ""); active != "" {
		db = db.Where("reklams.is_active = ?", active == "true")
	}

	result, err := query.List[model.Reklam](db, listOptions, query.Params{
		OwnerID: teacherID,
		Page:    page,
		Limit:   limit,
		Search:  search,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch reklams")
	}

	pagination := response.CalculatePagination(page, limit, result.Total)
	return response.Paginated(c, result.Items, pagination)
}

// GetReklam handles GET /api/v1/reklams/:id
func (h *ReklamHandler) GetReklam(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)
	id := c.Params("id")

	var reklam model.Reklam
	if err := h.db.Where("teacher_id = ?", teacherID).First(&reklam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Reklam not found")
		}
		return response.InternalServerError(c, "Failed to fetch reklam")
	}

	return response.Success(c, reklam)
}

// CreateReklam handles POST /api/v1/reklams. The banner carries either image
// media or video media, never both; an image goes to object storage, a video
// through the two-phase host upload.
func (h *ReklamHandler) CreateReklam(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateReklamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	imageFile, imgErr := c.FormFile("image")
	videoFile, vidErr := c.FormFile("video")
	hasImage := imgErr == nil
	hasVideo := vidErr == nil

	if hasImage == hasVideo {
		return response.BadRequest(c, "Provide exactly one of an image or a video file")
	}

	linkType := model.LinkTypeNone
	if req.LinkType != "" {
		linkType = model.LinkType(req.LinkType)
	}
	if linkType != model.LinkTypeNone && req.LinkTarget == "" {
		return response.BadRequest(c, "A link target is required for this link type")
	}

	reklam := model.Reklam{
		TeacherID:    teacherID,
		Title:        req.Title,
		Description:  req.Description,
		LinkType:     linkType,
		LinkTarget:   req.LinkTarget,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		reklam.IsActive = *req.IsActive
	}

	if req.Style != "" {
		style, err := parseStyle(req.Style)
		if err != nil {
			return response.BadRequest(c, "Style must be a JSON object")
		}
		reklam.Style = style
	}

	if hasImage {
		src, err := imageFile.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read image file")
		}
		key, url, upErr := h.mediaService.UploadFile(c.Context(), storage.PrefixReklamImages, imageFile.Filename, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload image")
		}
		reklam.ImageURL = url
		reklam.ImageKey = key
	}

	var uploadSession *model.VideoUpload
	if hasVideo {
		src, err := videoFile.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read video file")
		}
		result, upErr := h.mediaService.UploadVideo(c.Context(), teacherID, req.Title, src, nil)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrVideoHostDisabled {
				return response.ServiceUnavailable(c, "Video hosting is not configured")
			}
			log.Printf("reklam video upload failed: %v", upErr)
			return response.BadGateway(c, "Failed to upload video")
		}
		reklam.VideoURL = result.EmbedURL
		reklam.VideoHLSURL = result.HLSURL
		uploadSession = result.Session
	}

	if err := h.db.Create(&reklam).Error; err != nil {
		return response.InternalServerError(c, "Failed to create reklam")
	}

	if uploadSession != nil {
		if err := h.mediaService.CommitVideoUpload(c.Context(), uploadSession); err != nil {
			log.Printf("failed to commit reklam video upload session %d: %v", uploadSession.ID, err)
		}
	}

	h.audit.Record(teacherID, "create", "reklam", reklam.ID, nil, c.IP())

	return response.Created(c, reklam)
}

// UpdateReklam handles PUT /api/v1/reklams/:id. Supplying new media swaps
// the banner's media kind: an image replaces any video and vice versa, with
// the displaced media removed best-effort.
func (h *ReklamHandler) UpdateReklam(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var reklam model.Reklam
	if err := h.db.Where("teacher_id = ?", teacherID).First(&reklam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Reklam not found")
		}
		return response.InternalServerError(c, "Failed to fetch reklam")
	}

	var req UpdateReklamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	imageFile, imgErr := c.FormFile("image")
	videoFile, vidErr := c.FormFile("video")
	hasImage := imgErr == nil
	hasVideo := vidErr == nil

	if hasImage && hasVideo {
		return response.BadRequest(c, "Provide at most one of an image or a video file")
	}

	previous := reklam

	if req.Title != nil {
		reklam.Title = validation.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		reklam.Description = validation.SanitizeString(*req.Description)
	}
	if req.LinkType != nil {
		reklam.LinkType = model.LinkType(*req.LinkType)
	}
	if req.LinkTarget != nil {
		reklam.LinkTarget = *req.LinkTarget
	}
	if reklam.LinkType != model.LinkTypeNone && reklam.LinkTarget == "" {
		return response.BadRequest(c, "A link target is required for this link type")
	}
	if req.DisplayOrder != nil {
		reklam.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		reklam.IsActive = *req.IsActive
	}
	if req.Style != nil {
		style, err := parseStyle(*req.Style)
		if err != nil {
			return response.BadRequest(c, "Style must be a JSON object")
		}
		reklam.Style = style
	}

	oldImageKey := reklam.ImageKey
	oldVideoGUID := bunny.GUIDFromEmbedURL(reklam.VideoURL)

	if hasImage {
		src, err := imageFile.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read image file")
		}
		key, url, upErr := h.mediaService.UploadFile(c.Context(), storage.PrefixReklamImages, imageFile.Filename, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload image")
		}
		reklam.ImageURL = url
		reklam.ImageKey = key
		reklam.VideoURL = ""
		reklam.VideoHLSURL = ""
	}

	var uploadSession *model.VideoUpload
	if hasVideo {
		src, err := videoFile.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read video file")
		}
		result, upErr := h.mediaService.UploadVideo(c.Context(), teacherID, reklam.Title, src, nil)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrVideoHostDisabled {
				return response.ServiceUnavailable(c, "Video hosting is not configured")
			}
			log.Printf("reklam video upload failed: %v", upErr)
			return response.BadGateway(c, "Failed to upload video")
		}
		reklam.VideoURL = result.EmbedURL
		reklam.VideoHLSURL = result.HLSURL
		reklam.ImageURL = ""
		reklam.ImageKey = ""
		uploadSession = result.Session
	}

	if err := h.db.Save(&reklam).Error; err != nil {
		return response.InternalServerError(c, "Failed to update reklam")
	}

	if uploadSession != nil {
		if err := h.mediaService.CommitVideoUpload(c.Context(), uploadSession); err != nil {
			log.Printf("failed to commit reklam video upload session %d: %v", uploadSession.ID, err)
		}
	}

	// Remove whatever media the update displaced
	if (hasImage || hasVideo) && oldImageKey != "" && oldImageKey != reklam.ImageKey {
		if err := h.mediaService.DeleteObject(c.Context(), oldImageKey); err != nil {
			log.Printf("failed to delete replaced reklam image %s: %v", oldImageKey, err)
		}
	}
	if (hasImage || hasVideo) && oldVideoGUID != "" && oldVideoGUID != bunny.GUIDFromEmbedURL(reklam.VideoURL) {
		if err := h.mediaService.DeleteHostedVideo(c.Context(), oldVideoGUID); err != nil {
			log.Printf("failed to delete replaced reklam video %s: %v", oldVideoGUID, err)
		}
	}

	h.audit.Record(teacherID, "update", "reklam", reklam.ID, previous, c.IP())

	return response.Success(c, reklam)
}

// DeleteReklam handles DELETE /api/v1/reklams/:id. Banner media is removed
// best-effort after the row is gone.
func (h *ReklamHandler) DeleteReklam(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	id := c.Params("id")

	var reklam model.Reklam
	if err := h.db.Where("teacher_id = ?", teacherID).First(&reklam, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Reklam not found")
		}
		return response.InternalServerError(c, "Failed to fetch reklam")
	}

	if err := h.db.Delete(&reklam).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete reklam")
	}

	if reklam.ImageKey != "" {
		if err := h.mediaService.DeleteObject(c.Context(), reklam.ImageKey); err != nil {
			log.Printf("failed to delete reklam image %s: %v", reklam.ImageKey, err)
		}
	}
	if guid := bunny.GUIDFromEmbedURL(reklam.VideoURL); guid != "" {
		if err := h.mediaService.DeleteHostedVideo(c.Context(), guid); err != nil {
			log.Printf("failed to delete reklam video %s: %v", guid, err)
		}
	}

	h.audit.Record(teacherID, "delete", "reklam", reklam.ID, reklam, c.IP())

	return response.SuccessWithMessage(c, "Reklam deleted", nil)
}
