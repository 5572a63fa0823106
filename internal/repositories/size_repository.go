package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
)

// SizeUsage counts the items that reference a size.
type SizeUsage struct {
	models.Size
	ItemCount int64 `json:"item_count"`
}

type SizeRepository interface {
	List(ctx context.Context, category models.SizeCategory) ([]models.Size, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Size, error)
	GetByNameAndCategory(ctx context.Context, name string, category models.SizeCategory) (*models.Size, error)
	Search(ctx context.Context, query string) ([]models.Size, error)
	Create(ctx context.Context, size *models.Size) error
	Update(ctx context.Context, size *models.Size) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	Usage(ctx context.Context) ([]SizeUsage, error)
	CountItemsUsing(ctx context.Context, id uuid.UUID) (int64, error)
}

type gormSizeRepository struct {
	db *gorm.DB
}

func NewSizeRepository(db *gorm.DB) SizeRepository {
	return &gormSizeRepository{db: db}
}

// List returns sizes of one category, or all of them when category is empty.
func (r *gormSizeRepository) List(ctx context.Context, category models.SizeCategory) ([]models.Size, error) {
	sizes := make([]models.Size, 0)
	q := database.Conn(ctx, r.db)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("category").Order("created_at").Order("name").Find(&sizes).Error
	return sizes, err
}

func (r *gormSizeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Size, error) {
	var size models.Size
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&size).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &size, nil
}

func (r *gormSizeRepository) GetByNameAndCategory(ctx context.Context, name string, category models.SizeCategory) (*models.Size, error) {
	var size models.Size
	err := database.Conn(ctx, r.db).
		Where("LOWER(name) = ? AND category = ?", strings.ToLower(strings.TrimSpace(name)), category).
		First(&size).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &size, nil
}

// Search matches name or category as a case-insensitive substring.
func (r *gormSizeRepository) Search(ctx context.Context, query string) ([]models.Size, error) {
	sizes := make([]models.Size, 0)
	pattern := likePattern(query)
	err := database.Conn(ctx, r.db).
		Where(ilike("name")+" OR "+ilike("category"), pattern, pattern).
		Order("category").
		Order("name").
		Find(&sizes).Error
	return sizes, err
}

func (r *gormSizeRepository) Create(ctx context.Context, size *models.Size) error {
	return database.Conn(ctx, r.db).Create(size).Error
}

func (r *gormSizeRepository) Update(ctx context.Context, size *models.Size) error {
	return database.Conn(ctx, r.db).Save(size).Error
}

func (r *gormSizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Size{}).Error
}

func (r *gormSizeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.Size{}).Count(&count).Error
	return count, err
}

func (r *gormSizeRepository) Usage(ctx context.Context) ([]SizeUsage, error) {
	usage := make([]SizeUsage, 0)
	err := database.Conn(ctx, r.db).Model(&models.Size{}).
		Select("sizes.*, (SELECT COUNT(*) FROM base_items bi WHERE bi.size_id = sizes.id) AS item_count").
		Order("sizes.category").
		Order("sizes.name").
		Scan(&usage).Error
	return usage, err
}

func (r *gormSizeRepository) CountItemsUsing(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.BaseItem{}).Where("size_id = ?", id).Count(&count).Error
	return count, err
}
