// internal/services/collection_service.go
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
	"github.com/footycollect/footycollect-api/internal/utils"
)

// CollectionService composes the item, photo, color and size services for
// operations that span several of them.
type CollectionService interface {
	CreateItemWithPhotos(ctx context.Context, userID uuid.UUID, req *CreateItemRequest, uploads []PhotoUpload) (*models.BaseItem, error)
	UpdateItemWithPhotos(ctx context.Context, userID, itemID uuid.UUID, req *UpdateItemRequest, uploads []PhotoUpload, removePhotoIDs []uuid.UUID) (*models.BaseItem, error)
	SearchCollection(ctx context.Context, userID *uuid.UUID, query string, params ItemSearchParams) (*CollectionSearchResult, error)
	GetCollectionDashboardData(ctx context.Context, userID uuid.UUID) (*DashboardData, error)
	GetCollectionStatistics(ctx context.Context) (*CollectionStatistics, error)
	GetCollectionAnalytics(ctx context.Context, userID uuid.UUID) (*CollectionAnalytics, error)
	GetUserCollectionSummary(ctx context.Context, userID uuid.UUID) (*CollectionSummary, error)
	GetFormData(ctx context.Context) (*FormData, error)
	InitializeCollectionData(ctx context.Context) (*InitializationResult, error)
}

type CollectionSearchResult struct {
	Items        []models.BaseItem `json:"items"`
	TotalItems   int64             `json:"total_items"`
	Colors       []models.Color    `json:"colors"`
	Sizes        []models.Size     `json:"sizes"`
	TotalResults int               `json:"total_results"`
}

type DashboardData struct {
	TotalItems    int64                     `json:"total_items"`
	PublicItems   int64                     `json:"public_items"`
	ItemsByType   map[models.ItemType]int64 `json:"items_by_type"`
	RecentItems   []models.BaseItem         `json:"recent_items"`
	ColorStats    *ColorStatistics          `json:"color_stats"`
	SizeStats     *SizeStatistics           `json:"size_stats"`
	PopularColors []repositories.ColorUsage `json:"popular_colors"`
	PopularSizes  []repositories.SizeUsage  `json:"popular_sizes"`
}

type CollectionStatistics struct {
	TotalColors       int64                         `json:"total_colors"`
	TotalSizes        int64                         `json:"total_sizes"`
	TotalItems        int64                         `json:"total_items"`
	TotalPhotos       int64                         `json:"total_photos"`
	ColorDistribution []repositories.ColorUsage     `json:"color_distribution"`
	SizeDistribution  map[models.SizeCategory]int64 `json:"size_distribution"`
}

type CollectionAnalytics struct {
	Items  *ItemAnalytics            `json:"item_analytics"`
	Colors []repositories.ColorUsage `json:"color_analytics"`
	Sizes  []repositories.SizeUsage  `json:"size_analytics"`
	Photos *PhotoAnalytics           `json:"photo_analytics"`
}

type CollectionSummary struct {
	TotalItems      int64                     `json:"total_items"`
	ByType          map[models.ItemType]int64 `json:"by_type"`
	ClubCount       int                       `json:"club_count"`
	SeasonCount     int                       `json:"season_count"`
	RecentAdditions []models.BaseItem         `json:"recent_additions"`
}

// FormData is what an item form needs to render its pickers.
type FormData struct {
	Colors []models.Color                        `json:"colors"`
	Sizes  map[models.SizeCategory][]models.Size `json:"sizes"`
}

type InitializationResult struct {
	Colors int `json:"colors"`
	Sizes  int `json:"sizes"`
}

type collectionService struct {
	db     *gorm.DB
	items  ItemService
	photos PhotoService
	colors ColorService
	sizes  SizeService
}

func NewCollectionService(db *gorm.DB, items ItemService, photos PhotoService, colors ColorService, sizes SizeService) CollectionService {
	return &collectionService{db: db, items: items, photos: photos, colors: colors, sizes: sizes}
}

// CreateItemWithPhotos creates the item and all of its photos, or nothing.
func (s *collectionService) CreateItemWithPhotos(ctx context.Context, userID uuid.UUID, req *CreateItemRequest, uploads []PhotoUpload) (*models.BaseItem, error) {
	var item *models.BaseItem
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		created, err := s.items.CreateItem(ctx, userID, req)
		if err != nil {
			return err
		}
		for _, upload := range uploads {
			if _, err := s.photos.CreatePhoto(ctx, userID, created.ID, upload); err != nil {
				return err
			}
		}
		item, err = s.items.GetItem(ctx, &userID, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"item_id": item.ID,
		"user_id": userID,
		"photos":  len(uploads),
	}).Info("Item created with photos")
	return item, nil
}

// UpdateItemWithPhotos applies field changes, then removes photos, then adds
// new ones, so appended photos start after a contiguous 0..n-1 sequence.
func (s *collectionService) UpdateItemWithPhotos(ctx context.Context, userID, itemID uuid.UUID, req *UpdateItemRequest, uploads []PhotoUpload, removePhotoIDs []uuid.UUID) (*models.BaseItem, error) {
	var item *models.BaseItem
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.items.UpdateItem(ctx, userID, itemID, req); err != nil {
			return err
		}

		if len(removePhotoIDs) > 0 {
			current, err := s.photos.GetPhotosForItem(ctx, &userID, itemID)
			if err != nil {
				return err
			}
			onItem := make(map[uuid.UUID]bool, len(current))
			for _, p := range current {
				onItem[p.ID] = true
			}
			for _, id := range uniqueIDs(removePhotoIDs) {
				if !onItem[id] {
					return ErrPhotoNotOnItem
				}
				if err := s.photos.DeletePhoto(ctx, userID, id); err != nil {
					return err
				}
			}
		}

		for _, upload := range uploads {
			if _, err := s.photos.CreatePhoto(ctx, userID, itemID, upload); err != nil {
				return err
			}
		}

		var err error
		item, err = s.items.GetItem(ctx, &userID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SearchCollection searches items, colors and sizes with the same query.
func (s *collectionService) SearchCollection(ctx context.Context, userID *uuid.UUID, query string, params ItemSearchParams) (*CollectionSearchResult, error) {
	result := &CollectionSearchResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result.Items, result.TotalItems, err = s.items.SearchItems(gctx, userID, query, params)
		return err
	})
	g.Go(func() error {
		var err error
		result.Colors, err = s.colors.SearchColors(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		result.Sizes, err = s.sizes.SearchSizes(gctx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.TotalResults = len(result.Items) + len(result.Colors) + len(result.Sizes)
	return result, nil
}

func (s *collectionService) GetCollectionDashboardData(ctx context.Context, userID uuid.UUID) (*DashboardData, error) {
	data := &DashboardData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.TotalItems, err = s.items.CountItems(gctx, &userID)
		return err
	})
	g.Go(func() error {
		var err error
		_, data.PublicItems, err = s.items.GetPublicItems(gctx, FeedParams{PaginationParams: utils.PaginationParams{Page: 1, Limit: 1}})
		return err
	})
	g.Go(func() error {
		var err error
		data.ItemsByType, err = s.items.GetUserItemCountByType(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		data.RecentItems, err = s.items.GetRecentItems(gctx, userID, 5)
		return err
	})
	g.Go(func() error {
		var err error
		data.ColorStats, err = s.colors.GetColorStatistics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.SizeStats, err = s.sizes.GetSizeStatistics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.PopularColors, err = s.colors.GetPopularColors(gctx, 5)
		return err
	})
	g.Go(func() error {
		var err error
		data.PopularSizes, err = s.sizes.GetPopularSizes(gctx, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *collectionService) GetCollectionStatistics(ctx context.Context) (*CollectionStatistics, error) {
	stats := &CollectionStatistics{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		colorStats, err := s.colors.GetColorStatistics(gctx)
		if err != nil {
			return err
		}
		stats.TotalColors = colorStats.TotalColors
		return nil
	})
	g.Go(func() error {
		sizeStats, err := s.sizes.GetSizeStatistics(gctx)
		if err != nil {
			return err
		}
		stats.TotalSizes = sizeStats.TotalSizes
		return nil
	})
	g.Go(func() error {
		var err error
		stats.TotalItems, err = s.items.CountItems(gctx, nil)
		return err
	})
	g.Go(func() error {
		photoStats, err := s.photos.GetPhotoAnalytics(gctx, nil)
		if err != nil {
			return err
		}
		stats.TotalPhotos = photoStats.TotalPhotos
		return nil
	})
	g.Go(func() error {
		var err error
		stats.ColorDistribution, err = s.colors.GetColorUsageAnalytics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.SizeDistribution, err = s.sizes.GetSizeDistributionByCategory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *collectionService) GetCollectionAnalytics(ctx context.Context, userID uuid.UUID) (*CollectionAnalytics, error) {
	analytics := &CollectionAnalytics{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		analytics.Items, err = s.items.GetItemAnalytics(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		analytics.Colors, err = s.colors.GetColorUsageAnalytics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		analytics.Sizes, err = s.sizes.GetSizeUsageAnalytics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		analytics.Photos, err = s.photos.GetPhotoAnalytics(gctx, &userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (s *collectionService) GetUserCollectionSummary(ctx context.Context, userID uuid.UUID) (*CollectionSummary, error) {
	items, err := s.items.GetUserItems(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	byType, err := s.items.GetUserItemCountByType(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.items.GetRecentItems(ctx, userID, 10)
	if err != nil {
		return nil, err
	}

	clubs := make(map[uuid.UUID]bool)
	seasons := make(map[uuid.UUID]bool)
	for _, item := range items {
		if item.ClubID != nil {
			clubs[*item.ClubID] = true
		}
		if item.SeasonID != nil {
			seasons[*item.SeasonID] = true
		}
	}

	return &CollectionSummary{
		TotalItems:      int64(len(items)),
		ByType:          byType,
		ClubCount:       len(clubs),
		SeasonCount:     len(seasons),
		RecentAdditions: recent,
	}, nil
}

func (s *collectionService) GetFormData(ctx context.Context) (*FormData, error) {
	colors, err := s.colors.GetAllColors(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := s.sizes.GetAllSizes(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[models.SizeCategory][]models.Size, len(models.SizeCategories))
	for _, c := range models.SizeCategories {
		grouped[c] = []models.Size{}
	}
	for _, size := range sizes {
		grouped[size.Category] = append(grouped[size.Category], size)
	}
	return &FormData{Colors: colors, Sizes: grouped}, nil
}

// InitializeCollectionData seeds the default colors and sizes. It is safe
// to run repeatedly.
func (s *collectionService) InitializeCollectionData(ctx context.Context) (*InitializationResult, error) {
	colors, colorErr := s.colors.InitializeDefaultColors(ctx)
	sizes, sizeErr := s.sizes.InitializeDefaultSizes(ctx)
	if err := errors.Join(colorErr, sizeErr); err != nil {
		return nil, err
	}
	return &InitializationResult{Colors: colors, Sizes: sizes}, nil
}
