package document

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
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Teacher{}, &model.Course{}, &model.Document{}, &model.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	teacher := model.Teacher{Email: "teacher@example.com", PasswordHash: "x", Name: "Demo Teacher"}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	handler := NewDocumentHandler(db, media.NewService(db, nil, nil))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("teacher_id", teacher.ID)
		return c.Next()
	})

	documents := app.Group("/api/v1/documents")
	documents.Get("/", handler.ListDocuments)
	documents.Get("/:id", handler.GetDocument)
	documents.Post("/", handler.CreateDocument)
	documents.Put("/:id", handler.UpdateDocument)
	documents.Delete("/:id", handler.DeleteDocument)

	return app, db
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, filename string) *http.Request {
	t.Helper()
	var buf strings.Builder
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if filename != "" {
		fw, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		io.WriteString(fw, "file bytes")
	}
	writer.Close()

	req := httptest.NewRequest(method, target, strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestCreateDocumentRequiresFile(t *testing.T) {
	app, _ := setupApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/documents/",
		map[string]string{"title": "Syllabus"}, "")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestCreateDocumentNeedsStorage(t *testing.T) {
	// Storage is not configured in the test service, so the upload must
	// answer 503 and leave no row behind.
	app, db := setupApp(t)

	req := multipartRequest(t, http.MethodPost, "/api/v1/documents/",
		map[string]string{"title": "Syllabus"}, "syllabus.pdf")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", res.StatusCode)
	}

	var count int64
	db.Model(&model.Document{}).Count(&count)
	if count != 0 {
		t.Errorf("no document row should be written, got %d", count)
	}
}

func TestCreateDocumentRejectsForeignCourse(t *testing.T) {
	app, db := setupApp(t)

	course := model.Course{TeacherID: 42, Title: "Someone Else's Course"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}

	req := multipartRequest(t, http.MethodPost, "/api/v1/documents/",
		map[string]string{
			"title":     "Syllabus",
			"course_id": fmt.Sprintf("%d", course.ID),
		}, "syllabus.pdf")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}

func TestListDocumentsIsOwnerScoped(t *testing.T) {
	app, db := setupApp(t)

	documents := []model.Document{
		{TeacherID: 1, Title: "Mine", FileURL: "https://cdn/a.pdf", FilePath: "documents/a", FileName: "a.pdf"},
		{TeacherID: 2, Title: "Theirs", FileURL: "https://cdn/b.pdf", FilePath: "documents/b", FileName: "b.pdf"},
	}
	if err := db.Create(&documents).Error; err != nil {
		t.Fatalf("failed to seed documents: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/documents/", nil))
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
		t.Errorf("total = %d, want 1", envelope.Pagination.Total)
	}
}

func TestUpdateDocumentMetadataOnly(t *testing.T) {
	app, db := setupApp(t)

	document := model.Document{
		TeacherID: 1,
		Title:     "Syllabus",
		FileURL:   "https://cdn/a.pdf",
		FilePath:  "documents/a",
		FileName:  "a.pdf",
	}
	if err := db.Create(&document).Error; err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	req := multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/v1/documents/%d", document.ID),
		map[string]string{"title": "Updated Syllabus"}, "")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var updated model.Document
	if err := db.First(&updated, document.ID).Error; err != nil {
		t.Fatalf("failed to reload document: %v", err)
	}
	if updated.Title != "Updated Syllabus" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.FilePath != "documents/a" {
		t.Errorf("stored object must be untouched, got %q", updated.FilePath)
	}
}

func TestDeleteDocument(t *testing.T) {
	app, db := setupApp(t)

	document := model.Document{
		TeacherID: 1,
		Title:     "Syllabus",
		FileURL:   "https://cdn/a.pdf",
		FilePath:  "documents/a",
		FileName:  "a.pdf",
	}
	if err := db.Create(&document).Error; err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	res, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/documents/%d", document.ID), nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	var count int64
	db.Model(&model.Document{}).Count(&count)
	if count != 0 {
		t.Errorf("document should be gone, found %d", count)
	}
}
