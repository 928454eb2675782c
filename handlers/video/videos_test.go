package video

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeHost counts calls against a stand-in for the video host API
type fakeHost struct {
	server      *httptest.Server
	createCalls int
	uploadCalls int
	deleteCalls int
	failCreate  bool
}

func newFakeHost() *fakeHost {
	h := &fakeHost{}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.createCalls++
			if h.failCreate {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"guid": "abc-123"})
		case http.MethodPut:
			h.uploadCalls++
		case http.MethodDelete:
			h.deleteCalls++
		}
	}))
	return h
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *fakeHost) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Teacher{}, &model.Course{}, &model.Video{}, &model.VideoUpload{}, &model.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	teacher := model.Teacher{Email: "teacher@example.com", PasswordHash: "x", Name: "Demo Teacher"}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	host := newFakeHost()
	t.Cleanup(host.server.Close)

	bunnyClient, err := bunny.NewClient(bunny.Config{
		LibraryID: "12345",
		APIKey:    "test-key",
		BaseURL:   host.server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create bunny client: %v", err)
	}

	handler := NewVideoHandler(db, media.NewService(db, nil, bunnyClient))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("teacher_id", teacher.ID)
		return c.Next()
	})

	videos := app.Group("/api/v1/videos")
	videos.Get("/", handler.ListVideos)
	videos.Get("/:id", handler.GetVideo)
	videos.Post("/", handler.CreateVideo)
	videos.Put("/:id", handler.UpdateVideo)
	videos.Delete("/:id", handler.DeleteVideo)

	return app, db, host
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files []part) *http.Request {
	t.Helper()
	var buf strings.Builder
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", f.field, err)
		}
		io.WriteString(fw, f.content)
	}
	writer.Close()

	req := httptest.NewRequest(method, target, strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func seedCourse(t *testing.T, db *gorm.DB, teacherID uint, title string) model.Course {
	t.Helper()
	course := model.Course{TeacherID: teacherID, Title: title}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

func TestCreateVideoFromFileRunsTwoPhaseUpload(t *testing.T) {
	app, db, host := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
		},
		[]part{{"video", "lesson1.mp4", "mp4 bytes"}})

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}

	if host.createCalls != 1 || host.uploadCalls != 1 {
		t.Errorf("host calls: create=%d upload=%d, want 1/1", host.createCalls, host.uploadCalls)
	}

	var video model.Video
	if err := db.First(&video).Error; err != nil {
		t.Fatalf("failed to load video: %v", err)
	}
	if video.Link != "https://iframe.mediadelivery.net/embed/12345/abc-123" {
		t.Errorf("link = %q", video.Link)
	}
	if video.VideoHLSURL != "https://vz-12345.b-cdn.net/abc-123/playlist.m3u8" {
		t.Errorf("hls url = %q", video.VideoHLSURL)
	}

	// The session is committed once the row exists
	var session model.VideoUpload
	if err := db.First(&session).Error; err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if session.Status != model.VideoUploadStatusCommitted {
		t.Errorf("session status = %q, want committed", session.Status)
	}
}

func TestCreateVideoFromExternalLinkSkipsHost(t *testing.T) {
	app, db, host := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
			"link":      "https://youtube.com/watch?v=xyz",
		}, nil)

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}
	if host.createCalls != 0 || host.uploadCalls != 0 {
		t.Errorf("external links must not touch the host: create=%d upload=%d", host.createCalls, host.uploadCalls)
	}
}

func TestCreateVideoRequiresFileOrLink(t *testing.T) {
	app, db, _ := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
		}, nil)

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestCreateVideoRejectsBothFileAndLink(t *testing.T) {
	app, db, _ := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
			"link":      "https://youtube.com/watch?v=xyz",
		},
		[]part{{"video", "lesson1.mp4", "mp4 bytes"}})

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestCreateVideoRejectsForeignCourse(t *testing.T) {
	app, db, host := setupApp(t)
	course := seedCourse(t, db, 42, "Someone Else's Course")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
			"link":      "https://youtube.com/watch?v=xyz",
		}, nil)

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
	if host.createCalls != 0 {
		t.Errorf("host must not be touched for a rejected course, got %d create calls", host.createCalls)
	}
}

func TestCreateVideoHostFailureWritesNoRow(t *testing.T) {
	app, db, host := setupApp(t)
	host.failCreate = true
	course := seedCourse(t, db, 1, "Algebra I")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos/",
		map[string]string{
			"course_id": fmt.Sprintf("%d", course.ID),
			"title":     "Lesson 1",
		},
		[]part{{"video", "lesson1.mp4", "mp4 bytes"}})

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", res.StatusCode)
	}
	if host.uploadCalls != 0 {
		t.Errorf("bytes must not be sent after a failed create, got %d", host.uploadCalls)
	}

	var count int64
	db.Model(&model.Video{}).Count(&count)
	if count != 0 {
		t.Errorf("no video row should be written, got %d", count)
	}
}

func TestListVideosScopesThroughCourse(t *testing.T) {
	app, db, _ := setupApp(t)
	mine := seedCourse(t, db, 1, "Algebra I")
	theirs := seedCourse(t, db, 42, "Biology")

	videos := []model.Video{
		{CourseID: mine.ID, Title: "Lesson 1", Link: "https://example.com/1"},
		{CourseID: mine.ID, Title: "Lesson 2", Link: "https://example.com/2"},
		{CourseID: theirs.ID, Title: "Cells", Link: "https://example.com/3"},
	}
	if err := db.Create(&videos).Error; err != nil {
		t.Fatalf("failed to seed videos: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/videos/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var envelope struct {
		Data       []model.Video `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2 (foreign course's video must not leak)", envelope.Pagination.Total)
	}
	for _, v := range envelope.Data {
		if v.CourseID != mine.ID {
			t.Errorf("leaked video from course %d", v.CourseID)
		}
	}
}

func TestListVideosSearchesCourseTitle(t *testing.T) {
	app, db, _ := setupApp(t)
	algebra := seedCourse(t, db, 1, "Algebra I")
	geometry := seedCourse(t, db, 1, "Geometry")

	videos := []model.Video{
		{CourseID: algebra.ID, Title: "Lesson 1", Link: "https://example.com/1"},
		{CourseID: geometry.ID, Title: "Angles", Link: "https://example.com/2"},
	}
	if err := db.Create(&videos).Error; err != nil {
		t.Fatalf("failed to seed videos: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/videos/?search=algebra", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var envelope struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1 match via the course title", envelope.Pagination.Total)
	}
}

func TestDeleteVideoRemovesHostedCopy(t *testing.T) {
	app, db, host := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	video := model.Video{
		CourseID: course.ID,
		Title:    "Lesson 1",
		Link:     "https://iframe.mediadelivery.net/embed/12345/abc-123",
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", video.ID), nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if host.deleteCalls != 1 {
		t.Errorf("expected 1 host delete call, got %d", host.deleteCalls)
	}
}

func TestDeleteVideoWithExternalLinkSkipsHost(t *testing.T) {
	app, db, host := setupApp(t)
	course := seedCourse(t, db, 1, "Algebra I")

	video := model.Video{CourseID: course.ID, Title: "Lesson 1", Link: "https://youtube.com/watch?v=xyz"}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/videos/%d", video.ID), nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if host.deleteCalls != 0 {
		t.Errorf("external links must not trigger host deletes, got %d", host.deleteCalls)
	}
}
