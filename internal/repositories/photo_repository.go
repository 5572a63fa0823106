package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
)

// PhotoStats is the raw material for photo analytics.
type PhotoStats struct {
	Total       int64
	Attached    int64
	Orphaned    int64
	Optimized   int64
	UploadTimes []time.Time
}

type PhotoRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error)
	ListForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) ([]models.Photo, error)
	GetMain(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (*models.Photo, error)
	CountForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (int64, error)
	MaxOrder(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (int, error)
	Create(ctx context.Context, photo *models.Photo) error
	Update(ctx context.Context, photo *models.Photo) error
	UpdateOrder(ctx context.Context, id uuid.UUID, order int) error
	SetMain(ctx context.Context, kind models.OwnerKind, ownerID, photoID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) error
	ListOrphans(ctx context.Context, uploadedBefore time.Time) ([]models.Photo, error)
	Stats(ctx context.Context, userID *uuid.UUID) (*PhotoStats, error)
}

type gormPhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &gormPhotoRepository{db: db}
}

func (r *gormPhotoRepository) ownedBy(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) *gorm.DB {
	return database.Conn(ctx, r.db).Model(&models.Photo{}).Where("owner_kind = ? AND owner_id = ?", kind, ownerID)
}

func (r *gormPhotoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&photo).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *gormPhotoRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error) {
	photos := make([]models.Photo, 0, len(ids))
	if len(ids) == 0 {
		return photos, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&photos).Error
	return photos, err
}

// ListForOwner returns photos in display order. Ties on order fall back to
// upload time and then id so the sequence is deterministic.
func (r *gormPhotoRepository) ListForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) ([]models.Photo, error) {
	photos := make([]models.Photo, 0)
	err := r.ownedBy(ctx, kind, ownerID).
		Order("display_order ASC").
		Order("uploaded_at ASC").
		Order("id ASC").
		Find(&photos).Error
	return photos, err
}

func (r *gormPhotoRepository) GetMain(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := r.ownedBy(ctx, kind, ownerID).Where("is_main = ?", true).First(&photo).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *gormPhotoRepository) CountForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.ownedBy(ctx, kind, ownerID).Count(&count).Error
	return count, err
}

// MaxOrder returns the highest display order in use, or -1 when the owner has
// no photos.
func (r *gormPhotoRepository) MaxOrder(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) (int, error) {
	var max sql.NullInt64
	if err := r.ownedBy(ctx, kind, ownerID).Select("MAX(display_order)").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *gormPhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	return database.Conn(ctx, r.db).Create(photo).Error
}

func (r *gormPhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	return database.Conn(ctx, r.db).Save(photo).Error
}

func (r *gormPhotoRepository) UpdateOrder(ctx context.Context, id uuid.UUID, order int) error {
	return database.Conn(ctx, r.db).Model(&models.Photo{}).Where("id = ?", id).Update("display_order", order).Error
}

// SetMain flags photoID as main and clears the flag on every other photo of
// the owner. Callers run it inside a transaction.
func (r *gormPhotoRepository) SetMain(ctx context.Context, kind models.OwnerKind, ownerID, photoID uuid.UUID) error {
	if err := r.ownedBy(ctx, kind, ownerID).Where("id <> ?", photoID).Update("is_main", false).Error; err != nil {
		return err
	}
	return r.ownedBy(ctx, kind, ownerID).Where("id = ?", photoID).Update("is_main", true).Error
}

func (r *gormPhotoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Photo{}).Error
}

func (r *gormPhotoRepository) DeleteForOwner(ctx context.Context, kind models.OwnerKind, ownerID uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("owner_kind = ? AND owner_id = ?", kind, ownerID).Delete(&models.Photo{}).Error
}

func (r *gormPhotoRepository) ListOrphans(ctx context.Context, uploadedBefore time.Time) ([]models.Photo, error) {
	photos := make([]models.Photo, 0)
	err := database.Conn(ctx, r.db).
		Where("owner_id IS NULL AND uploaded_at < ?", uploadedBefore).
		Order("uploaded_at ASC").
		Find(&photos).Error
	return photos, err
}

func (r *gormPhotoRepository) Stats(ctx context.Context, userID *uuid.UUID) (*PhotoStats, error) {
	scope := func() *gorm.DB {
		q := database.Conn(ctx, r.db).Model(&models.Photo{})
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		return q
	}

	stats := &PhotoStats{}
	if err := scope().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := scope().Where("owner_id IS NOT NULL").Count(&stats.Attached).Error; err != nil {
		return nil, err
	}
	stats.Orphaned = stats.Total - stats.Attached
	if err := scope().Where("optimized_key <> ''").Count(&stats.Optimized).Error; err != nil {
		return nil, err
	}
	if err := scope().Order("uploaded_at").Pluck("uploaded_at", &stats.UploadTimes).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
