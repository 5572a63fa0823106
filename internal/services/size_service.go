// internal/services/size_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
)

type SizeService interface {
	GetAllSizes(ctx context.Context) ([]models.Size, error)
	GetSizesByCategory(ctx context.Context, category models.SizeCategory) ([]models.Size, error)
	GetSizesForItemType(ctx context.Context, itemType models.ItemType) ([]models.Size, error)
	GetSize(ctx context.Context, id uuid.UUID) (*models.Size, error)
	SearchSizes(ctx context.Context, query string) ([]models.Size, error)
	CreateCustomSize(ctx context.Context, req *CreateSizeRequest) (*models.Size, error)
	UpdateSize(ctx context.Context, id uuid.UUID, req *UpdateSizeRequest) (*models.Size, error)
	DeleteSize(ctx context.Context, id uuid.UUID) error
	InitializeDefaultSizes(ctx context.Context) (int, error)
	GetSizeStatistics(ctx context.Context) (*SizeStatistics, error)
	GetSizeDistributionByCategory(ctx context.Context) (map[models.SizeCategory]int64, error)
	GetPopularSizes(ctx context.Context, limit int) ([]repositories.SizeUsage, error)
	GetSizeUsageAnalytics(ctx context.Context) ([]repositories.SizeUsage, error)
}

type CreateSizeRequest struct {
	Name     string              `json:"name" validate:"required,max=20"`
	Category models.SizeCategory `json:"category" validate:"required,size_category"`
}

type UpdateSizeRequest struct {
	Name     *string              `json:"name,omitempty" validate:"omitempty,min=1,max=20"`
	Category *models.SizeCategory `json:"category,omitempty" validate:"omitempty,size_category"`
}

type SizeStatistics struct {
	TotalSizes  int64                         `json:"total_sizes"`
	CustomSizes int64                         `json:"custom_sizes"`
	UsedSizes   int64                         `json:"used_sizes"`
	ByCategory  map[models.SizeCategory]int64 `json:"by_category"`
}

type sizeService struct {
	db    *gorm.DB
	sizes repositories.SizeRepository
}

func NewSizeService(deps *Dependencies) SizeService {
	return &sizeService{db: deps.DB, sizes: deps.Sizes}
}

func (s *sizeService) GetAllSizes(ctx context.Context) ([]models.Size, error) {
	return s.sizes.List(ctx, "")
}

func (s *sizeService) GetSizesByCategory(ctx context.Context, category models.SizeCategory) ([]models.Size, error) {
	if !validSizeCategory(category) {
		return nil, newValidationError("category", "Category must be one of: tops, bottoms, other")
	}
	return s.sizes.List(ctx, category)
}

// GetSizesForItemType lists the sizes offered for an item type, e.g.
// waist sizes for shorts.
func (s *sizeService) GetSizesForItemType(ctx context.Context, itemType models.ItemType) ([]models.Size, error) {
	if !itemType.Valid() {
		return nil, newValidationError("item_type", "Item type must be one of: jersey, shorts, outerwear, tracksuit")
	}
	return s.sizes.List(ctx, models.SizeCategoryFor(itemType))
}

func validSizeCategory(c models.SizeCategory) bool {
	for _, known := range models.SizeCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (s *sizeService) GetSize(ctx context.Context, id uuid.UUID) (*models.Size, error) {
	size, err := s.sizes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if size == nil {
		return nil, ErrSizeNotFound
	}
	return size, nil
}

func (s *sizeService) SearchSizes(ctx context.Context, query string) ([]models.Size, error) {
	if strings.TrimSpace(query) == "" {
		return s.sizes.List(ctx, "")
	}
	return s.sizes.Search(ctx, query)
}

func (s *sizeService) checkUnique(ctx context.Context, id *uuid.UUID, name string, category models.SizeCategory) error {
	existing, err := s.sizes.GetByNameAndCategory(ctx, name, category)
	if err != nil {
		return err
	}
	if existing != nil && (id == nil || existing.ID != *id) {
		return ErrSizeExists
	}
	return nil
}

func (s *sizeService) CreateCustomSize(ctx context.Context, req *CreateSizeRequest) (*models.Size, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	size := &models.Size{Name: strings.TrimSpace(req.Name), Category: req.Category, IsCustom: true}

	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, nil, size.Name, size.Category); err != nil {
			return err
		}
		if err := s.sizes.Create(ctx, size); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrSizeExists
			}
			return fmt.Errorf("failed to create size: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"size": size.Name, "category": size.Category}).Info("Custom size created")
	return size, nil
}

func (s *sizeService) UpdateSize(ctx context.Context, id uuid.UUID, req *UpdateSizeRequest) (*models.Size, error) {
	if req == nil {
		req = &UpdateSizeRequest{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var size *models.Size
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		if size, err = s.GetSize(ctx, id); err != nil {
			return err
		}
		if req.Name != nil {
			size.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			size.Category = *req.Category
		}
		if err := s.checkUnique(ctx, &id, size.Name, size.Category); err != nil {
			return err
		}
		if err := s.sizes.Update(ctx, size); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrSizeExists
			}
			return fmt.Errorf("failed to update size: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return size, nil
}

func (s *sizeService) DeleteSize(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.GetSize(ctx, id); err != nil {
			return err
		}
		inUse, err := s.sizes.CountItemsUsing(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return ErrSizeInUse
		}
		return s.sizes.Delete(ctx, id)
	})
}

func (s *sizeService) InitializeDefaultSizes(ctx context.Context) (int, error) {
	created := 0
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, category := range models.SizeCategories {
			for _, name := range models.DefaultSizes[category] {
				existing, err := s.sizes.GetByNameAndCategory(ctx, name, category)
				if err != nil {
					return err
				}
				if existing != nil {
					continue
				}
				if err := s.sizes.Create(ctx, &models.Size{Name: name, Category: category}); err != nil {
					return fmt.Errorf("failed to seed size %s/%s: %w", category, name, err)
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		logrus.WithField("created", created).Info("Default sizes initialized")
	}
	return created, nil
}

func (s *sizeService) GetSizeStatistics(ctx context.Context) (*SizeStatistics, error) {
	usage, err := s.sizes.Usage(ctx)
	if err != nil {
		return nil, err
	}
	stats := &SizeStatistics{
		TotalSizes: int64(len(usage)),
		ByCategory: zeroByCategory(),
	}
	for _, u := range usage {
		stats.ByCategory[u.Category]++
		if u.IsCustom {
			stats.CustomSizes++
		}
		if u.ItemCount > 0 {
			stats.UsedSizes++
		}
	}
	return stats, nil
}

// GetSizeDistributionByCategory counts items per size category.
func (s *sizeService) GetSizeDistributionByCategory(ctx context.Context) (map[models.SizeCategory]int64, error) {
	usage, err := s.sizes.Usage(ctx)
	if err != nil {
		return nil, err
	}
	dist := zeroByCategory()
	for _, u := range usage {
		dist[u.Category] += u.ItemCount
	}
	return dist, nil
}

func zeroByCategory() map[models.SizeCategory]int64 {
	m := make(map[models.SizeCategory]int64, len(models.SizeCategories))
	for _, c := range models.SizeCategories {
		m[c] = 0
	}
	return m
}

func (s *sizeService) GetPopularSizes(ctx context.Context, limit int) ([]repositories.SizeUsage, error) {
	usage, err := s.sizes.Usage(ctx)
	if err != nil {
		return nil, err
	}
	popular := make([]repositories.SizeUsage, 0, len(usage))
	for _, u := range usage {
		if u.ItemCount > 0 {
			popular = append(popular, u)
		}
	}
	sort.SliceStable(popular, func(i, j int) bool { return popular[i].ItemCount > popular[j].ItemCount })
	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func (s *sizeService) GetSizeUsageAnalytics(ctx context.Context) ([]repositories.SizeUsage, error) {
	return s.sizes.Usage(ctx)
}
