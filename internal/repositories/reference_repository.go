package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
)

// ReferenceRepository resolves the football context entities items point at.
// The GetOrCreate methods match on the external FKAPI id first and fall back
// to a case-insensitive name match.
type ReferenceRepository interface {
	GetOrCreateClub(ctx context.Context, club *models.Club) (*models.Club, error)
	GetOrCreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	GetOrCreateCompetition(ctx context.Context, competition *models.Competition) (*models.Competition, error)
	GetOrCreateSeason(ctx context.Context, year string) (*models.Season, error)
	GetOrCreateKitType(ctx context.Context, name, category string) (*models.KitType, error)
	GetOrCreateKit(ctx context.Context, kit *models.Kit) (*models.Kit, error)
	GetCompetitions(ctx context.Context, ids []uuid.UUID) ([]models.Competition, error)
	Exists(ctx context.Context, model interface{}, id uuid.UUID) (bool, error)
	ListBrands(ctx context.Context, query string) ([]models.Brand, error)
	ListClubs(ctx context.Context, query string) ([]models.Club, error)
}

type gormReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &gormReferenceRepository{db: db}
}

// getOrCreate looks dest up by fkaID (when set) or by name and inserts it
// when neither matches.
func (r *gormReferenceRepository) getOrCreate(ctx context.Context, dest interface{}, fkaID *int, name string) error {
	db := database.Conn(ctx, r.db)
	var err error
	if fkaID != nil {
		err = db.Where("fka_id = ?", *fkaID).First(dest).Error
		if err == nil || !notFound(err) {
			return err
		}
	}
	err = db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(dest).Error
	if err == nil || !notFound(err) {
		return err
	}
	return db.Create(dest).Error
}

func (r *gormReferenceRepository) GetOrCreateClub(ctx context.Context, club *models.Club) (*models.Club, error) {
	found := *club
	if err := r.getOrCreate(ctx, &found, club.FKAID, club.Name); err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *gormReferenceRepository) GetOrCreateBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	found := *brand
	if err := r.getOrCreate(ctx, &found, brand.FKAID, brand.Name); err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *gormReferenceRepository) GetOrCreateCompetition(ctx context.Context, competition *models.Competition) (*models.Competition, error) {
	found := *competition
	if err := r.getOrCreate(ctx, &found, competition.FKAID, competition.Name); err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *gormReferenceRepository) GetOrCreateKit(ctx context.Context, kit *models.Kit) (*models.Kit, error) {
	found := *kit
	if err := r.getOrCreate(ctx, &found, kit.FKAID, kit.Name); err != nil {
		return nil, err
	}
	return &found, nil
}

// GetOrCreateSeason accepts "2023-24", "2023-2024" or "2023" and stores the
// first and second year separately.
func (r *gormReferenceRepository) GetOrCreateSeason(ctx context.Context, year string) (*models.Season, error) {
	year = strings.TrimSpace(year)
	season := models.Season{}
	db := database.Conn(ctx, r.db)
	err := db.Where("year = ?", year).First(&season).Error
	if err == nil {
		return &season, nil
	}
	if !notFound(err) {
		return nil, err
	}

	season.Year = year
	season.FirstYear, season.SecondYear = splitSeasonYear(year)
	if err := db.Create(&season).Error; err != nil {
		return nil, err
	}
	return &season, nil
}

func splitSeasonYear(year string) (string, string) {
	first, second, found := strings.Cut(year, "-")
	if !found {
		return first, ""
	}
	if len(second) == 2 && len(first) == 4 {
		second = first[:2] + second
	}
	return first, second
}

func (r *gormReferenceRepository) GetOrCreateKitType(ctx context.Context, name, category string) (*models.KitType, error) {
	kitType := models.KitType{}
	db := database.Conn(ctx, r.db)
	err := db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&kitType).Error
	if err == nil {
		return &kitType, nil
	}
	if !notFound(err) {
		return nil, err
	}

	kitType.Name = strings.TrimSpace(name)
	kitType.Category = category
	kitType.IsGoalkeeper = strings.Contains(strings.ToLower(name), "goalkeeper")
	if err := db.Create(&kitType).Error; err != nil {
		return nil, err
	}
	return &kitType, nil
}

func (r *gormReferenceRepository) GetCompetitions(ctx context.Context, ids []uuid.UUID) ([]models.Competition, error) {
	competitions := make([]models.Competition, 0, len(ids))
	if len(ids) == 0 {
		return competitions, nil
	}
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&competitions).Error
	return competitions, err
}

// Exists reports whether a row of model's table has the given id.
func (r *gormReferenceRepository) Exists(ctx context.Context, model interface{}, id uuid.UUID) (bool, error) {
	var n int64
	err := database.Conn(ctx, r.db).Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *gormReferenceRepository) ListBrands(ctx context.Context, query string) ([]models.Brand, error) {
	brands := make([]models.Brand, 0)
	q := database.Conn(ctx, r.db).Order("name")
	if query != "" {
		q = q.Where(ilike("name"), likePattern(query))
	}
	err := q.Find(&brands).Error
	return brands, err
}

func (r *gormReferenceRepository) ListClubs(ctx context.Context, query string) ([]models.Club, error) {
	clubs := make([]models.Club, 0)
	q := database.Conn(ctx, r.db).Order("name")
	if query != "" {
		q = q.Where(ilike("name"), likePattern(query))
	}
	err := q.Find(&clubs).Error
	return clubs, err
}
