package media

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/derslig/teacher-panel-api/model"
	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/derslig/teacher-panel-api/services/storage"
	"gorm.io/gorm"
)

var (
	// ErrStorageDisabled is returned when object storage is not configured
	ErrStorageDisabled = errors.New("object storage is not configured")
	// ErrVideoHostDisabled is returned when the video host is not configured
	ErrVideoHostDisabled = errors.New("video host is not configured")
)

// Progress checkpoints for the two-phase video upload. There is no byte-level
// progress: 20 after the placeholder exists, 100 after the bytes landed.
const (
	ProgressCreated  = 20
	ProgressComplete = 100
)

// Service orchestrates the media upload sequences: single-call blob uploads
// to object storage and the two-phase video upload against the external host.
type Service struct {
	db      *gorm.DB
	storage *storage.SpacesClient
	bunny   *bunny.Client
}

// NewService creates a media service. Either client may be nil when its
// configuration is absent; the corresponding operations then fail fast.
func NewService(db *gorm.DB, storageClient *storage.SpacesClient, bunnyClient *bunny.Client) *Service {
	return &Service{
		db:      db,
		storage: storageClient,
		bunny:   bunnyClient,
	}
}

// StorageEnabled reports whether blob uploads are configured
func (s *Service) StorageEnabled() bool {
	return s.storage != nil
}

// VideoHostEnabled reports whether the external video host is configured
func (s *Service) VideoHostEnabled() bool {
	return s.bunny != nil
}

// UploadFile stores a blob under the given prefix and returns its storage
// key and public URL. No retry; any failure aborts the caller's save.
func (s *Service) UploadFile(ctx context.Context, prefix, filename string, data io.Reader) (string, string, error) {
	if s.storage == nil {
		return "", "", ErrStorageDisabled
	}

	key := storage.GenerateKey(prefix, filename)
	url, err := s.storage.Upload(ctx, key, data, storage.ContentTypeFor(filename))
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// DeleteObject removes a stored blob. Replacement and delete flows call this
// best-effort: failures are logged by the caller, not fatal.
func (s *Service) DeleteObject(ctx context.Context, key string) error {
	if s.storage == nil {
		return ErrStorageDisabled
	}
	if key == "" {
		return nil
	}
	return s.storage.Delete(ctx, key)
}

// ReplaceFile uploads a new blob and then deletes the object it replaces.
// The old object's deletion is best-effort.
func (s *Service) ReplaceFile(ctx context.Context, prefix, filename, oldKey string, data io.Reader) (string, string, error) {
	key, url, err := s.UploadFile(ctx, prefix, filename, data)
	if err != nil {
		return "", "", err
	}
	if oldKey != "" {
		if delErr := s.DeleteObject(ctx, oldKey); delErr != nil {
			log.Printf("failed to delete replaced object %s: %v", oldKey, delErr)
		}
	}
	return key, url, nil
}

// VideoUploadResult carries the host identifier, derived URLs and the
// tracking session of a completed two-phase upload.
type VideoUploadResult struct {
	GUID     string
	EmbedURL string
	HLSURL   string
	Session  *model.VideoUpload
}

// UploadVideo runs the two-phase upload: create the placeholder, then send
// the bytes, then derive the player URLs without further network calls. A
// session row tracks the sequence so the sweeper can delete placeholders
// whose database write never happened. Phase-1 failure means phase 2 is
// never attempted.
func (s *Service) UploadVideo(ctx context.Context, teacherID uint, title string, data io.Reader, onProgress func(int)) (*VideoUploadResult, error) {
	if s.bunny == nil {
		return nil, ErrVideoHostDisabled
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	session := &model.VideoUpload{
		TeacherID: teacherID,
		Title:     title,
		Status:    model.VideoUploadStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}

	guid, err := s.bunny.CreateVideo(ctx, title)
	if err != nil {
		s.markSessionFailed(ctx, session, err)
		return nil, err
	}

	session.GUID = guid
	if err := s.db.WithContext(ctx).Model(session).Update("guid", guid).Error; err != nil {
		return nil, err
	}
	onProgress(ProgressCreated)

	if err := s.bunny.UploadVideo(ctx, guid, data); err != nil {
		s.markSessionFailed(ctx, session, err)
		return nil, err
	}
	onProgress(ProgressComplete)

	session.Status = model.VideoUploadStatusUploaded
	if err := s.db.WithContext(ctx).Model(session).Update("status", session.Status).Error; err != nil {
		return nil, err
	}

	return &VideoUploadResult{
		GUID:     guid,
		EmbedURL: s.bunny.EmbedURL(guid),
		HLSURL:   s.bunny.HLSURL(guid),
		Session:  session,
	}, nil
}

// CommitVideoUpload marks a session committed once the database row
// referencing the derived URLs has been written.
func (s *Service) CommitVideoUpload(ctx context.Context, session *model.VideoUpload) error {
	session.Status = model.VideoUploadStatusCommitted
	return s.db.WithContext(ctx).Model(session).Update("status", session.Status).Error
}

// DeleteHostedVideo removes a video from the external host, best-effort
func (s *Service) DeleteHostedVideo(ctx context.Context, guid string) error {
	if s.bunny == nil {
		return ErrVideoHostDisabled
	}
	if guid == "" {
		return nil
	}
	return s.bunny.DeleteVideo(ctx, guid)
}

func (s *Service) markSessionFailed(ctx context.Context, session *model.VideoUpload, cause error) {
	session.Status = model.VideoUploadStatusFailed
	session.Error = cause.Error()
	if err := s.db.WithContext(ctx).Model(session).
		Updates(map[string]interface{}{"status": session.Status, "error": session.Error}).Error; err != nil {
		log.Printf("failed to mark video upload session %d failed: %v", session.ID, err)
	}
}
