package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
)

// ColorUsage counts how many items reference a color as main or secondary.
type ColorUsage struct {
	models.Color
	MainCount      int64 `json:"main_count"`
	SecondaryCount int64 `json:"secondary_count"`
}

func (u ColorUsage) Total() int64 { return u.MainCount + u.SecondaryCount }

type ColorRepository interface {
	List(ctx context.Context) ([]models.Color, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Color, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Color, error)
	GetByName(ctx context.Context, name string) (*models.Color, error)
	GetByHex(ctx context.Context, hex string) (*models.Color, error)
	Search(ctx context.Context, query string) ([]models.Color, error)
	Create(ctx context.Context, color *models.Color) error
	Update(ctx context.Context, color *models.Color) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	Usage(ctx context.Context) ([]ColorUsage, error)
	CountItemsUsing(ctx context.Context, id uuid.UUID) (int64, error)
}

type gormColorRepository struct {
	db *gorm.DB
}

func NewColorRepository(db *gorm.DB) ColorRepository {
	return &gormColorRepository{db: db}
}

func (r *gormColorRepository) first(q *gorm.DB) (*models.Color, error) {
	var color models.Color
	if err := q.First(&color).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &color, nil
}

func (r *gormColorRepository) List(ctx context.Context) ([]models.Color, error) {
	colors := make([]models.Color, 0)
	err := database.Conn(ctx, r.db).Order("name").Find(&colors).Error
	return colors, err
}

func (r *gormColorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	return r.first(database.Conn(ctx, r.db).Where("id = ?", id))
}

func (r *gormColorRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Color, error) {
	colors := make([]models.Color, 0, len(ids))
	if len(ids) == 0 {
		return colors, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&colors).Error
	return colors, err
}

func (r *gormColorRepository) GetByName(ctx context.Context, name string) (*models.Color, error) {
	return r.first(database.Conn(ctx, r.db).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))))
}

func (r *gormColorRepository) GetByHex(ctx context.Context, hex string) (*models.Color, error) {
	return r.first(database.Conn(ctx, r.db).Where("UPPER(hex_value) = ?", strings.ToUpper(strings.TrimSpace(hex))))
}

// Search matches name as a case-insensitive substring or hex value exactly.
func (r *gormColorRepository) Search(ctx context.Context, query string) ([]models.Color, error) {
	colors := make([]models.Color, 0)
	err := database.Conn(ctx, r.db).
		Where(ilike("name")+" OR UPPER(hex_value) = ?", likePattern(query), strings.ToUpper(strings.TrimSpace(query))).
		Order("name").
		Find(&colors).Error
	return colors, err
}

func (r *gormColorRepository) Create(ctx context.Context, color *models.Color) error {
	return database.Conn(ctx, r.db).Create(color).Error
}

func (r *gormColorRepository) Update(ctx context.Context, color *models.Color) error {
	return database.Conn(ctx, r.db).Save(color).Error
}

func (r *gormColorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&models.Color{}).Error
}

func (r *gormColorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.Color{}).Count(&count).Error
	return count, err
}

func (r *gormColorRepository) Usage(ctx context.Context) ([]ColorUsage, error) {
	usage := make([]ColorUsage, 0)
	err := database.Conn(ctx, r.db).Model(&models.Color{}).
		Select(`colors.*,
			(SELECT COUNT(*) FROM base_items bi WHERE bi.main_color_id = colors.id) AS main_count,
			(SELECT COUNT(*) FROM base_item_secondary_colors sc WHERE sc.color_id = colors.id) AS secondary_count`).
		Order("colors.name").
		Scan(&usage).Error
	return usage, err
}

func (r *gormColorRepository) CountItemsUsing(ctx context.Context, id uuid.UUID) (int64, error) {
	var main, secondary int64
	db := database.Conn(ctx, r.db)
	if err := db.Model(&models.BaseItem{}).Where("main_color_id = ?", id).Count(&main).Error; err != nil {
		return 0, err
	}
	if err := db.Table("base_item_secondary_colors").Where("color_id = ?", id).Count(&secondary).Error; err != nil {
		return 0, err
	}
	return main + secondary, nil
}
