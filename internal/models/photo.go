// internal/models/photo.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is attached to its owner through an (OwnerKind, OwnerID) pair. A nil
// OwnerID marks an upload that has not been attached to an item yet.
type Photo struct {
	BaseModel
	OwnerKind    OwnerKind  `json:"owner_kind" gorm:"type:varchar(20);not null;default:'base_item';index:idx_photos_owner"`
	OwnerID      *uuid.UUID `json:"owner_id,omitempty" gorm:"type:uuid;index:idx_photos_owner"`
	ImageKey     string     `json:"image_key" gorm:"size:500;not null"`
	ImageURL     string     `json:"image_url" gorm:"size:1000"`
	OptimizedKey string     `json:"optimized_key,omitempty" gorm:"size:500"`
	OptimizedURL string     `json:"optimized_url,omitempty" gorm:"size:1000"`
	ContentType  string     `json:"content_type" gorm:"size:50"`
	SizeBytes    int64      `json:"size_bytes"`
	Caption      string     `json:"caption" gorm:"size:255"`
	Order        int        `json:"order" gorm:"column:display_order;default:0"`
	IsMain       bool       `json:"is_main" gorm:"default:false"`
	UploadedAt   time.Time  `json:"uploaded_at" gorm:"index"`
	UserID       *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
}

// DisplayURL prefers the optimized variant once the conversion job has run.
func (p *Photo) DisplayURL() string {
	if p.OptimizedURL != "" {
		return p.OptimizedURL
	}
	return p.ImageURL
}

// Keys returns every storage key referenced by the photo.
func (p *Photo) Keys() []string {
	keys := []string{p.ImageKey}
	if p.OptimizedKey != "" {
		keys = append(keys, p.OptimizedKey)
	}
	return keys
}
