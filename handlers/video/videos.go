package video

import (
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
	"gorm.io/gorm"
)

// VideoHandler handles video-related requests. Videos have no owner column
// of their own; every lookup goes through the owning course.
type VideoHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	mediaService *media.Service
	audit        *audit.Recorder
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(db *gorm.DB, mediaService *media.Service) *VideoHandler {
	return &VideoHandler{
		db:           db,
		validator:    validation.NewValidator(),
		mediaService: mediaService,
		audit:        audit.NewRecorder(db),
	}
}

var listOptions = query.Options{
	OwnerColumn:   "courses.teacher_id",
	Joins:         []string{"JOIN courses ON courses.id = videos.course_id"},
	SearchColumns: []string{"videos.title", "courses.title"},
	OrderColumn:   "videos.created_at",
	Preloads:      []string{"Course"},
	DefaultLimit:  10,
}

// CreateVideoRequest represents the multipart form for creating a video.
// Either Link or a "video" file must be supplied, not both.
type CreateVideoRequest struct {
	CourseID uint   `form:"course_id" validate:"required,min=1"`
	Title    string `form:"title" validate:"required,min=2,max=255"`
	Link     string `form:"link" validate:"omitempty,url"`
	Free     bool   `form:"free"`
}

// UpdateVideoRequest represents the multipart form for updating a video
type UpdateVideoRequest struct {
	Title *string `form:"title" validate:"omitempty,min=2,max=255"`
	Link  *string `form:"link" validate:"omitempty,url"`
	Free  *bool   `form:"free"`
}

// ownedVideo loads a video and verifies the requesting teacher owns its course
func (h *VideoHandler) ownedVideo(c *fiber.Ctx, teacherID uint, id string) (*model.Video, error) {
	var video model.Video
	err := h.db.
		Joins("JOIN courses ON courses.id = videos.course_id").
		Where("courses.teacher_id = ?", teacherID).
		Preload("Course").
		First(&video, "videos.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// ListVideos handles GET /api/v1/videos
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	result, err := query.List[model.Video](h.scopedDB(c), listOptions, query.Params{
		OwnerID: teacherID,
		Page:    page,
		Limit:   limit,
		Search:  search,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch videos")
	}

	pagination := response.CalculatePagination(page, limit, result.Total)
	return response.Paginated(c, result.Items, pagination)
}

// scopedDB narrows the listing to one course when course_id is passed
func (h *VideoHandler) scopedDB(c *fiber.Ctx) *gorm.DB {
	db := h.db
	if courseID := c.Query("course_id", ""); courseID != "" {
		db = db.Where("videos.course_id = ?", courseID)
	}
	return db
}

// GetVideo handles GET /api/v1/videos/:id
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	teacherID, _ := middleware.GetTeacherID(c)

	video, err := h.ownedVideo(c, teacherID, c.Params("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to fetch video")
	}

	return response.Success(c, video)
}

// CreateVideo handles POST /api/v1/videos. A supplied "video" file goes
// through the two-phase upload against the video host; the database row is
// written only after both phases succeeded. An external link skips the host
// entirely.
func (h *VideoHandler) CreateVideo(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Title = validation.SanitizeString(req.Title)

	// The target course must belong to the requesting teacher
	var course model.Course
	if err := h.db.Where("teacher_id = ?", teacherID).First(&course, req.CourseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to verify course")
	}

	videoFile, fileErr := c.FormFile("video")
	hasFile := fileErr == nil

	if req.Link == "" && !hasFile {
		return response.BadRequest(c, "Either a video file or an external link is required")
	}
	if req.Link != "" && hasFile {
		return response.BadRequest(c, "Provide either a video file or an external link, not both")
	}

	video := model.Video{
		CourseID: course.ID,
		Title:    req.Title,
		Link:     req.Link,
		Free:     req.Free,
	}

	var uploadSession *model.VideoUpload
	if hasFile {
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
			log.Printf("video upload failed: %v", upErr)
			return response.BadGateway(c, "Failed to upload video")
		}
		video.Link = result.EmbedURL
		video.VideoHLSURL = result.HLSURL
		uploadSession = result.Session
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read thumbnail file")
		}
		key, url, upErr := h.mediaService.UploadFile(c.Context(), storage.PrefixVideoThumbnails, file.Filename, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload thumbnail")
		}
		video.Thumbnail = url
		video.ThumbnailKey = key
	}

	if err := h.db.Create(&video).Error; err != nil {
		return response.InternalServerError(c, "Failed to create video")
	}

	// Row is written; the placeholder is no longer an orphan
	if uploadSession != nil {
		if err := h.mediaService.CommitVideoUpload(c.Context(), uploadSession); err != nil {
			log.Printf("failed to commit video upload session %d: %v", uploadSession.ID, err)
		}
	}

	h.audit.Record(teacherID, "create", "video", video.ID, nil, c.IP())

	video.Course = &course
	return response.Created(c, video)
}

// UpdateVideo handles PUT /api/v1/videos/:id
func (h *VideoHandler) UpdateVideo(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	video, err := h.ownedVideo(c, teacherID, c.Params("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to fetch video")
	}

	var req UpdateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	previous := *video

	if req.Title != nil {
		video.Title = validation.SanitizeString(*req.Title)
	}
	if req.Link != nil {
		// Switching to an external link abandons the hosted copy on purpose;
		// the HLS URL no longer applies.
		video.Link = *req.Link
		video.VideoHLSURL = ""
	}
	if req.Free != nil {
		video.Free = *req.Free
	}

	if file, err := c.FormFile("thumbnail"); err == nil {
		src, err := file.Open()
		if err != nil {
			return response.BadRequest(c, "Could not read thumbnail file")
		}
		key, url, upErr := h.mediaService.ReplaceFile(c.Context(), storage.PrefixVideoThumbnails, file.Filename, video.ThumbnailKey, src)
		src.Close()
		if upErr != nil {
			if upErr == media.ErrStorageDisabled {
				return response.ServiceUnavailable(c, "File storage is not configured")
			}
			return response.BadGateway(c, "Failed to upload thumbnail")
		}
		video.Thumbnail = url
		video.ThumbnailKey = key
	}

	if err := h.db.Save(video).Error; err != nil {
		return response.InternalServerError(c, "Failed to update video")
	}

	h.audit.Record(teacherID, "update", "video", video.ID, previous, c.IP())

	return response.Success(c, video)
}

// DeleteVideo handles DELETE /api/v1/videos/:id. The hosted copy and the
// thumbnail are removed best-effort after the row is gone.
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	teacherID, ok := middleware.GetTeacherID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	video, err := h.ownedVideo(c, teacherID, c.Params("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Video not found")
		}
		return response.InternalServerError(c, "Failed to fetch video")
	}

	if err := h.db.Delete(video).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete video")
	}

	if guid := bunny.GUIDFromEmbedURL(video.Link); guid != "" {
		if err := h.mediaService.DeleteHostedVideo(c.Context(), guid); err != nil {
			log.Printf("failed to delete hosted video %s: %v", guid, err)
		}
	}
	if video.ThumbnailKey != "" {
		if err := h.mediaService.DeleteObject(c.Context(), video.ThumbnailKey); err != nil {
			log.Printf("failed to delete video thumbnail %s: %v", video.ThumbnailKey, err)
		}
	}

	h.audit.Record(teacherID, "delete", "video", video.ID, video, c.IP())

	return response.SuccessWithMessage(c, "Video deleted", nil)
}
