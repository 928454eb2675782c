package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LinkType determines what a reklam's link_target refers to
type LinkType string

const (
	LinkTypeCourse   LinkType = "course"
	LinkTypeVideo    LinkType = "video"
	LinkTypeDocument LinkType = "document"
	LinkTypeExternal LinkType = "external"
	LinkTypeNone     LinkType = "none"
)

// ValidLinkTypes maps every accepted link_type value
var ValidLinkTypes = map[LinkType]bool{
	LinkTypeCourse:   true,
	LinkTypeVideo:    true,
	LinkTypeDocument: true,
	LinkTypeExternal: true,
	LinkTypeNone:     true,
}

// Reklam represents a promotional banner. Exactly one of the image or video
// media pair is present at a time; the handler enforces the exclusivity
// because the schema cannot.
type Reklam struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TeacherID    uint           `gorm:"not null;index" json:"teacher_id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	ImageURL     string         `gorm:"type:text" json:"image_url,omitempty"`
	ImageKey     string         `gorm:"type:varchar(500)" json:"-"`
	VideoURL     string         `gorm:"type:text" json:"video_url,omitempty"` // embeddable player URL
	VideoHLSURL  string         `gorm:"type:text" json:"video_hls_url,omitempty"`
	LinkType     LinkType       `gorm:"type:varchar(20);default:'none'" json:"link_type"`
	LinkTarget   string         `gorm:"type:text" json:"link_target,omitempty"`
	DisplayOrder int            `gorm:"default:0" json:"display_order"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	Style        datatypes.JSON `gorm:"type:jsonb" json:"style,omitempty"` // {background_color, text_color}

	// Relationships
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
}

// TableName specifies the table name for Reklam
func (Reklam) TableName() string {
	return "reklams"
}

// HasImage reports whether the banner carries image media
func (r *Reklam) HasImage() bool {
	return r.ImageURL != ""
}

// HasVideo reports whether the banner carries video media
func (r *Reklam) HasVideo() bool {
	return r.VideoURL != ""
}
