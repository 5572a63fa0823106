// internal/services/item_fkapi_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/fkapi"
	"github.com/footycollect/footycollect-api/internal/metrics"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
	"github.com/footycollect/footycollect-api/internal/utils"
)

// ItemFKAPIService creates items prefilled from the kit archive.
type ItemFKAPIService interface {
	ProcessItemCreation(ctx context.Context, userID uuid.UUID, req *CreateItemRequest, kitID int, photoIDs []uuid.UUID) (*models.BaseItem, error)
	GetKit(ctx context.Context, kitID int) (*fkapi.Kit, error)
	SearchKits(ctx context.Context, keyword string) ([]fkapi.KitSummary, error)
	SearchClubs(ctx context.Context, keyword string) ([]fkapi.Club, error)
}

type itemFKAPIService struct {
	db     *gorm.DB
	kits   fkapi.KitSource
	refs   repositories.ReferenceRepository
	colors repositories.ColorRepository
	items  ItemService
	photos PhotoService
}

func NewItemFKAPIService(deps *Dependencies, items ItemService, photos PhotoService) ItemFKAPIService {
	return &itemFKAPIService{
		db:     deps.DB,
		kits:   deps.KitSource,
		refs:   deps.References,
		colors: deps.Colors,
		items:  items,
		photos: photos,
	}
}

func (s *itemFKAPIService) GetKit(ctx context.Context, kitID int) (*fkapi.Kit, error) {
	if s.kits == nil {
		return nil, fkapi.ErrUnavailable
	}
	kit, err := s.kits.GetKit(ctx, kitID)
	metrics.FKAPIRequests.WithLabelValues("get_kit", metrics.Outcome(err)).Inc()
	return kit, err
}

func (s *itemFKAPIService) SearchKits(ctx context.Context, keyword string) ([]fkapi.KitSummary, error) {
	if len(strings.TrimSpace(keyword)) < 2 {
		return nil, newValidationError("keyword", "Search keyword must be at least 2 characters")
	}
	if s.kits == nil {
		return nil, fkapi.ErrUnavailable
	}
	kits, err := s.kits.SearchKits(ctx, keyword)
	metrics.FKAPIRequests.WithLabelValues("search_kits", metrics.Outcome(err)).Inc()
	return kits, err
}

func (s *itemFKAPIService) SearchClubs(ctx context.Context, keyword string) ([]fkapi.Club, error) {
	if len(strings.TrimSpace(keyword)) < 2 {
		return nil, newValidationError("keyword", "Search keyword must be at least 2 characters")
	}
	if s.kits == nil {
		return nil, fkapi.ErrUnavailable
	}
	clubs, err := s.kits.SearchClubs(ctx, keyword)
	metrics.FKAPIRequests.WithLabelValues("search_clubs", metrics.Outcome(err)).Inc()
	return clubs, err
}

// ProcessItemCreation merges the kit's metadata into req, creates the item,
// attaches the pre-uploaded photos and publishes it in one transaction. When
// the archive cannot be reached the item is created from req alone. Values
// set in req always win over the kit's.
func (s *itemFKAPIService) ProcessItemCreation(ctx context.Context, userID uuid.UUID, req *CreateItemRequest, kitID int, photoIDs []uuid.UUID) (*models.BaseItem, error) {
	if req == nil {
		return nil, newValidationError("request", "Item data is required")
	}
	merged := *req
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "kit_id": kitID})

	var kit *fkapi.Kit
	if kitID > 0 {
		var err error
		kit, err = s.GetKit(ctx, kitID)
		if err != nil {
			log.WithError(err).Warn("Kit archive unavailable, creating item without kit data")
		}
		mergeKitText(&merged, kitID, kit)
	}

	var item *models.BaseItem
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if kit != nil {
			if err := s.mergeKitReferences(ctx, &merged, kit); err != nil {
				return err
			}
		}

		created, err := s.items.CreateItem(ctx, userID, &merged)
		if err != nil {
			return err
		}
		if len(photoIDs) > 0 {
			if _, err := s.photos.AttachPhotos(ctx, userID, created.ID, photoIDs); err != nil {
				return err
			}
		}
		item, err = s.items.PublishItem(ctx, userID, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"item_id": item.ID, "photos": len(photoIDs)}).Info("Item created from kit")
	return item, nil
}

// mergeKitText applies the kit's name and appends the kit reference and
// description to the item description, once each.
func mergeKitText(req *CreateItemRequest, kitID int, kit *fkapi.Kit) {
	reference := fmt.Sprintf("\n\n[Kit ID: %d]", kitID)
	if !strings.Contains(req.Description, reference) {
		req.Description += reference
	}
	if kit == nil {
		return
	}
	if kit.Name != "" {
		req.Name = kit.Name
	}
	if kit.Description != "" && !strings.Contains(req.Description, kit.Description) {
		req.Description = req.Description + "\n\n" + kit.Description
	}
}

func (s *itemFKAPIService) mergeKitReferences(ctx context.Context, req *CreateItemRequest, kit *fkapi.Kit) error {
	if kit.Team != nil && kit.Team.Name != "" && req.ClubID == nil {
		club, err := s.refs.GetOrCreateClub(ctx, &models.Club{
			FKAID:   fkaID(kit.Team.ID),
			Name:    kit.Team.Name,
			Slug:    kit.Team.Slug,
			Logo:    kit.Team.Logo,
			Country: strings.ToUpper(kit.Team.Country),
		})
		if err != nil {
			return fmt.Errorf("failed to resolve club: %w", err)
		}
		req.ClubID = &club.ID
	}

	if kit.Season != nil && kit.Season.Year != "" && req.SeasonID == nil {
		season, err := s.refs.GetOrCreateSeason(ctx, kit.Season.Year)
		if err != nil {
			return fmt.Errorf("failed to resolve season: %w", err)
		}
		req.SeasonID = &season.ID
	}

	if kit.Brand != nil && kit.Brand.Name != "" && req.BrandID == nil {
		brand, err := s.refs.GetOrCreateBrand(ctx, &models.Brand{
			FKAID: fkaID(kit.Brand.ID),
			Name:  kit.Brand.Name,
			Slug:  utils.Slugify(kit.Brand.Name),
			Logo:  kit.Brand.Logo,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve brand: %w", err)
		}
		req.BrandID = &brand.ID
	}

	// Jackets are stored as outerwear rather than as a kit type.
	if kit.Type != nil && kit.Type.Name != "" && kit.Type.Category != "jacket" && req.KitTypeID == nil {
		category := kit.Type.Category
		if category == "" {
			category = "match"
		}
		kitType, err := s.refs.GetOrCreateKitType(ctx, kit.Type.Name, category)
		if err != nil {
			return fmt.Errorf("failed to resolve kit type: %w", err)
		}
		req.KitTypeID = &kitType.ID
	}

	if len(kit.Competitions) > 0 && len(req.CompetitionIDs) == 0 {
		for _, c := range kit.Competitions {
			if c.Name == "" {
				continue
			}
			competition, err := s.refs.GetOrCreateCompetition(ctx, &models.Competition{
				FKAID: fkaID(c.ID),
				Name:  c.Name,
				Slug:  utils.Slugify(c.Name),
				Logo:  c.Logo,
			})
			if err != nil {
				return fmt.Errorf("failed to resolve competition: %w", err)
			}
			req.CompetitionIDs = append(req.CompetitionIDs, competition.ID)
		}
	}

	if err := s.mergeColors(ctx, req, kit.Colors); err != nil {
		return err
	}

	if req.ItemType == models.ItemTypeJersey && (req.Jersey == nil || req.Jersey.KitID == nil) {
		stored, err := s.refs.GetOrCreateKit(ctx, &models.Kit{
			FKAID:        fkaID(kit.ID),
			Name:         kit.Name,
			Slug:         kit.Slug,
			ClubID:       req.ClubID,
			SeasonID:     req.SeasonID,
			BrandID:      req.BrandID,
			KitTypeID:    req.KitTypeID,
			MainImageURL: kit.MainImgURL,
		})
		if err != nil {
			return fmt.Errorf("failed to resolve kit: %w", err)
		}
		if req.Jersey == nil {
			req.Jersey = &JerseyAttributes{}
		} else {
			attrs := *req.Jersey
			req.Jersey = &attrs
		}
		req.Jersey.KitID = &stored.ID
	}
	return nil
}

// mergeColors uses the first kit color as main color and the rest as
// secondary colors, unless req already names them.
func (s *itemFKAPIService) mergeColors(ctx context.Context, req *CreateItemRequest, colors []fkapi.KitColor) error {
	if len(colors) == 0 {
		return nil
	}
	if req.MainColorID == nil {
		color, err := s.resolveColor(ctx, colors[0])
		if err != nil {
			return err
		}
		if color != nil {
			req.MainColorID = &color.ID
		}
	}
	if len(req.SecondaryColorIDs) == 0 {
		for _, kc := range colors[1:] {
			color, err := s.resolveColor(ctx, kc)
			if err != nil {
				return err
			}
			if color != nil && (req.MainColorID == nil || color.ID != *req.MainColorID) {
				req.SecondaryColorIDs = append(req.SecondaryColorIDs, color.ID)
			}
		}
	}
	return nil
}

// resolveColor finds a color by name and then by hex value, creating a
// custom color when the archive supplies a valid hex for an unknown name.
func (s *itemFKAPIService) resolveColor(ctx context.Context, kc fkapi.KitColor) (*models.Color, error) {
	name := strings.TrimSpace(kc.Name)
	if name == "" {
		return nil, nil
	}
	color, err := s.colors.GetByName(ctx, name)
	if err != nil || color != nil {
		return color, err
	}
	if !utils.IsHexColor(kc.Hex) {
		return nil, nil
	}
	hex := normalizeHex(kc.Hex)
	if color, err = s.colors.GetByHex(ctx, hex); err != nil || color != nil {
		return color, err
	}

	color = &models.Color{Name: name, HexValue: hex, IsCustom: true}
	if err := s.colors.Create(ctx, color); err != nil {
		return nil, fmt.Errorf("failed to create color %s: %w", name, err)
	}
	return color, nil
}

func fkaID(id fkapi.FlexID) *int {
	if id == 0 {
		return nil
	}
	n := int(id)
	return &n
}
