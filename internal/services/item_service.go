// internal/services/item_service.go
package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/metrics"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
	"github.com/footycollect/footycollect-api/internal/utils"
)

// ItemService owns the BaseItem plus subtype lifecycle.
type ItemService interface {
	GetItem(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*models.BaseItem, error)
	GetUserItems(ctx context.Context, userID uuid.UUID, itemType models.ItemType) ([]models.BaseItem, error)
	GetPublicItems(ctx context.Context, params FeedParams) ([]models.BaseItem, int64, error)
	GetRecentItems(ctx context.Context, userID uuid.UUID, limit int) ([]models.BaseItem, error)
	SearchItems(ctx context.Context, userID *uuid.UUID, query string, params ItemSearchParams) ([]models.BaseItem, int64, error)
	CreateItem(ctx context.Context, userID uuid.UUID, req *CreateItemRequest) (*models.BaseItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *UpdateItemRequest) (*models.BaseItem, error)
	PublishItem(ctx context.Context, userID, itemID uuid.UUID) (*models.BaseItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	GetItemAnalytics(ctx context.Context, userID uuid.UUID) (*ItemAnalytics, error)
	GetUserItemCountByType(ctx context.Context, userID uuid.UUID) (map[models.ItemType]int64, error)
	CountItems(ctx context.Context, userID *uuid.UUID) (int64, error)
}

type JerseyAttributes struct {
	KitID         *uuid.UUID `json:"kit_id,omitempty"`
	IsFanVersion  *bool      `json:"is_fan_version,omitempty"`
	IsSigned      bool       `json:"is_signed"`
	HasNameset    bool       `json:"has_nameset"`
	PlayerName    string     `json:"player_name,omitempty" validate:"max=100"`
	Number        *int       `json:"number,omitempty" validate:"omitempty,min=0,max=999"`
	IsShortSleeve *bool      `json:"is_short_sleeve,omitempty"`
}

type ShortsAttributes struct {
	Number       *int  `json:"number,omitempty" validate:"omitempty,min=0,max=999"`
	IsFanVersion *bool `json:"is_fan_version,omitempty"`
}

type OuterwearAttributes struct {
	Type models.OuterwearType `json:"type" validate:"required,oneof=hoodie jacket windbreaker crewneck"`
}

type CreateItemRequest struct {
	ItemType          models.ItemType          `json:"item_type" validate:"required,item_type"`
	Name              string                   `json:"name" validate:"required,max=200"`
	Description       string                   `json:"description,omitempty"`
	BrandID           *uuid.UUID               `json:"brand_id,omitempty"`
	ClubID            *uuid.UUID               `json:"club_id,omitempty"`
	SeasonID          *uuid.UUID               `json:"season_id,omitempty"`
	KitTypeID         *uuid.UUID               `json:"kit_type_id,omitempty"`
	CompetitionIDs    []uuid.UUID              `json:"competition_ids,omitempty"`
	MainColorID       *uuid.UUID               `json:"main_color_id,omitempty"`
	SecondaryColorIDs []uuid.UUID              `json:"secondary_color_ids,omitempty"`
	SizeID            *uuid.UUID               `json:"size_id,omitempty"`
	Condition         int                      `json:"condition,omitempty" validate:"omitempty,min=1,max=10"`
	DetailedCondition models.DetailedCondition `json:"detailed_condition,omitempty" validate:"omitempty,oneof=BNWT BNWOT EXCELLENT VERY_GOOD GOOD FAIR POOR"`
	Design            models.Design            `json:"design,omitempty" validate:"omitempty,oneof=PLAIN STRIPES GRAPHIC CHEST_BAND CONTRASTING_SLEEVES PINSTRIPES HOOPS SINGLE_STRIPE HALF_AND_HALF SASH CHEVRON CHECKERS GRADIENT DIAGONAL"`
	Country           string                   `json:"country,omitempty" validate:"omitempty,len=2"`
	IsReplica         bool                     `json:"is_replica"`
	IsPrivate         bool                     `json:"is_private"`
	IsDraft           bool                     `json:"is_draft"`

	Jersey    *JerseyAttributes    `json:"jersey,omitempty"`
	Shorts    *ShortsAttributes    `json:"shorts,omitempty"`
	Outerwear *OuterwearAttributes `json:"outerwear,omitempty"`
}

// UpdateItemRequest changes only the fields that are set. The item type is
// fixed at creation.
type UpdateItemRequest struct {
	Name              *string                   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string                   `json:"description,omitempty"`
	BrandID           *uuid.UUID                `json:"brand_id,omitempty"`
	ClubID            *uuid.UUID                `json:"club_id,omitempty"`
	SeasonID          *uuid.UUID                `json:"season_id,omitempty"`
	KitTypeID         *uuid.UUID                `json:"kit_type_id,omitempty"`
	CompetitionIDs    *[]uuid.UUID              `json:"competition_ids,omitempty"`
	MainColorID       *uuid.UUID                `json:"main_color_id,omitempty"`
	SecondaryColorIDs *[]uuid.UUID              `json:"secondary_color_ids,omitempty"`
	SizeID            *uuid.UUID                `json:"size_id,omitempty"`
	Condition         *int                      `json:"condition,omitempty" validate:"omitempty,min=1,max=10"`
	DetailedCondition *models.DetailedCondition `json:"detailed_condition,omitempty" validate:"omitempty,oneof=BNWT BNWOT EXCELLENT VERY_GOOD GOOD FAIR POOR"`
	Design            *models.Design            `json:"design,omitempty" validate:"omitempty,oneof=PLAIN STRIPES GRAPHIC CHEST_BAND CONTRASTING_SLEEVES PINSTRIPES HOOPS SINGLE_STRIPE HALF_AND_HALF SASH CHEVRON CHECKERS GRADIENT DIAGONAL"`
	Country           *string                   `json:"country,omitempty" validate:"omitempty,len=2"`
	IsReplica         *bool                     `json:"is_replica,omitempty"`
	IsPrivate         *bool                     `json:"is_private,omitempty"`
	IsDraft           *bool                     `json:"is_draft,omitempty"`

	Jersey    *JerseyAttributes    `json:"jersey,omitempty"`
	Shorts    *ShortsAttributes    `json:"shorts,omitempty"`
	Outerwear *OuterwearAttributes `json:"outerwear,omitempty"`
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateItemRequest) IsEmpty() bool {
	return r == nil || *r == UpdateItemRequest{}
}

type ItemSearchParams struct {
	utils.PaginationParams
	ItemType  models.ItemType `json:"item_type,omitempty"`
	BrandIDs  []uuid.UUID     `json:"brand_ids,omitempty"`
	ClubIDs   []uuid.UUID     `json:"club_ids,omitempty"`
	SeasonIDs []uuid.UUID     `json:"season_ids,omitempty"`
	ColorIDs  []uuid.UUID     `json:"color_ids,omitempty"`
	SizeIDs   []uuid.UUID     `json:"size_ids,omitempty"`
	BrandName string          `json:"brand,omitempty"`
	ClubName  string          `json:"club,omitempty"`
}

// FeedSort orders the public feed.
type FeedSort string

const (
	FeedSortNewest FeedSort = "newest"
	FeedSortRandom FeedSort = "random"
)

// FeedParams narrows and orders the public feed. Country matches either the
// club's or the item's country.
type FeedParams struct {
	utils.PaginationParams
	Query             string      `json:"q,omitempty"`
	Country           string      `json:"country,omitempty"`
	ClubIDs           []uuid.UUID `json:"club_ids,omitempty"`
	BrandIDs          []uuid.UUID `json:"brand_ids,omitempty"`
	Season            string      `json:"season,omitempty"`
	CompetitionIDs    []uuid.UUID `json:"competition_ids,omitempty"`
	KitTypeIDs        []uuid.UUID `json:"kit_type_ids,omitempty"`
	Category          string      `json:"category,omitempty"`
	HasNameset        bool        `json:"has_nameset,omitempty"`
	MainColorIDs      []uuid.UUID `json:"main_color_ids,omitempty"`
	SecondaryColorIDs []uuid.UUID `json:"secondary_color_ids,omitempty"`
	Sort              FeedSort    `json:"sort,omitempty"`
	// Seed fixes the random order across pages. Zero derives it from the
	// filters so the same query always pages through the same sequence.
	Seed int64 `json:"seed,omitempty"`
}

// seed returns p.Seed, or a hash of the filters when it is unset.
func (p FeedParams) seed() int64 {
	if p.Seed != 0 {
		return p.Seed
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%v|%v|%s|%v|%v|%s|%t|%v|%v",
		p.Query, p.Country, p.ClubIDs, p.BrandIDs, p.Season, p.CompetitionIDs,
		p.KitTypeIDs, p.Category, p.HasNameset, p.MainColorIDs, p.SecondaryColorIDs)
	return int64(h.Sum64() >> 1)
}

type ItemAnalytics struct {
	TotalItems  int64                     `json:"total_items"`
	ByType      map[models.ItemType]int64 `json:"by_type"`
	ByBrand     []repositories.LabelCount `json:"by_brand"`
	ByClub      []repositories.LabelCount `json:"by_club"`
	BySeason    []repositories.LabelCount `json:"by_season"`
	ByCondition []repositories.LabelCount `json:"by_condition"`
}

type itemService struct {
	db     *gorm.DB
	items  repositories.ItemRepository
	photos repositories.PhotoRepository
	colors repositories.ColorRepository
	sizes  repositories.SizeRepository
	refs   repositories.ReferenceRepository
	jobs   jobs.Enqueuer
}

func NewItemService(deps *Dependencies) ItemService {
	return &itemService{
		db:     deps.DB,
		items:  deps.Items,
		photos: deps.Photos,
		colors: deps.Colors,
		sizes:  deps.Sizes,
		refs:   deps.References,
		jobs:   deps.Jobs,
	}
}

func (s *itemService) GetItem(ctx context.Context, viewerID *uuid.UUID, id uuid.UUID) (*models.BaseItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil || !item.VisibleTo(viewerID) {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// getOwnedItem loads itemID and checks that userID owns it.
func (s *itemService) getOwnedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.BaseItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	return item, nil
}

func (s *itemService) GetUserItems(ctx context.Context, userID uuid.UUID, itemType models.ItemType) ([]models.BaseItem, error) {
	items, _, err := s.items.Filter(ctx, repositories.ItemFilter{OwnerID: &userID, ItemType: itemType})
	return items, err
}

// GetPublicItems lists public, published items for the feed. Newest first
// unless params ask for a seeded random order.
func (s *itemService) GetPublicItems(ctx context.Context, params FeedParams) ([]models.BaseItem, int64, error) {
	filter := repositories.ItemFilter{
		PublicOnly:        true,
		Query:             strings.TrimSpace(params.Query),
		ClubIDs:           params.ClubIDs,
		BrandIDs:          params.BrandIDs,
		SeasonYear:        strings.TrimSpace(params.Season),
		CompetitionIDs:    params.CompetitionIDs,
		KitTypeIDs:        params.KitTypeIDs,
		KitCategory:       strings.TrimSpace(params.Category),
		MainColorIDs:      params.MainColorIDs,
		SecondaryColorIDs: params.SecondaryColorIDs,
		Pagination:        params.PaginationParams,
	}
	if params.HasNameset {
		filter.HasNameset = &params.HasNameset
	}
	if country := strings.TrimSpace(params.Country); country != "" {
		if len(country) != 2 {
			return nil, 0, newValidationError("country", "Country must be a two-letter code")
		}
		filter.Country = strings.ToUpper(country)
	}

	switch params.Sort {
	case "", FeedSortNewest:
	case FeedSortRandom:
		filter.Order = repositories.OrderRandom
		filter.Seed = params.seed()
	default:
		return nil, 0, newValidationError("sort", "Sort must be one of: newest, random")
	}
	return s.items.Filter(ctx, filter)
}

func (s *itemService) GetRecentItems(ctx context.Context, userID uuid.UUID, limit int) ([]models.BaseItem, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.items.Recent(ctx, userID, limit)
}

// SearchItems matches query against item, club and brand names and applies
// the structured filters. A nil userID searches public items only.
func (s *itemService) SearchItems(ctx context.Context, userID *uuid.UUID, query string, params ItemSearchParams) ([]models.BaseItem, int64, error) {
	if params.ItemType != "" && !params.ItemType.Valid() {
		return nil, 0, newValidationError("item_type", "Item type must be one of: jersey, shorts, outerwear, tracksuit")
	}

	filter := repositories.ItemFilter{
		Query:      strings.TrimSpace(query),
		ItemType:   params.ItemType,
		BrandIDs:   params.BrandIDs,
		ClubIDs:    params.ClubIDs,
		SeasonIDs:  params.SeasonIDs,
		ColorIDs:   params.ColorIDs,
		SizeIDs:    params.SizeIDs,
		BrandName:  params.BrandName,
		ClubName:   params.ClubName,
		Pagination: params.PaginationParams,
	}
	if userID != nil {
		filter.VisibleTo = userID
	} else {
		filter.PublicOnly = true
	}
	return s.items.Filter(ctx, filter)
}

func (s *itemService) CreateItem(ctx context.Context, userID uuid.UUID, req *CreateItemRequest) (*models.BaseItem, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	subtype, err := buildSubtype(req)
	if err != nil {
		return nil, err
	}

	var created *models.BaseItem
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, itemReferences{
			MainColorID: req.MainColorID,
			SizeID:      req.SizeID,
			BrandID:     req.BrandID,
			ClubID:      req.ClubID,
			SeasonID:    req.SeasonID,
			KitTypeID:   req.KitTypeID,
		}); err != nil {
			return err
		}
		secondary, err := s.loadColors(ctx, req.SecondaryColorIDs)
		if err != nil {
			return err
		}
		competitions, err := s.loadCompetitions(ctx, req.CompetitionIDs)
		if err != nil {
			return err
		}

		item := &models.BaseItem{
			ItemType:          req.ItemType,
			Name:              strings.TrimSpace(req.Name),
			Description:       req.Description,
			UserID:            userID,
			BrandID:           req.BrandID,
			ClubID:            req.ClubID,
			SeasonID:          req.SeasonID,
			KitTypeID:         req.KitTypeID,
			MainColorID:       req.MainColorID,
			SizeID:            req.SizeID,
			Condition:         req.Condition,
			DetailedCondition: req.DetailedCondition,
			Design:            req.Design,
			Country:           strings.ToUpper(req.Country),
			IsReplica:         req.IsReplica,
			IsPrivate:         req.IsPrivate,
			IsDraft:           req.IsDraft,
		}
		if item.Condition == 0 {
			item.Condition = 10
		}
		if item.DetailedCondition == "" {
			item.DetailedCondition = models.ConditionBNWT
		}
		if item.Design == "" {
			item.Design = models.DesignPlain
		}

		if err := s.items.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		subtype.SetBaseItemID(item.ID)
		if err := s.items.CreateSubtype(ctx, subtype); err != nil {
			return fmt.Errorf("failed to create %s: %w", req.ItemType, err)
		}
		if len(competitions) > 0 {
			if err := s.items.ReplaceCompetitions(ctx, item, competitions); err != nil {
				return fmt.Errorf("failed to set competitions: %w", err)
			}
		}
		if len(secondary) > 0 {
			if err := s.items.ReplaceSecondaryColors(ctx, item, secondary); err != nil {
				return fmt.Errorf("failed to set secondary colors: %w", err)
			}
		}

		created, err = s.items.GetByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsCreated.WithLabelValues(string(created.ItemType)).Inc()
	logrus.WithFields(logrus.Fields{
		"item_id":   created.ID,
		"user_id":   userID,
		"item_type": created.ItemType,
	}).Info("Item created")
	return created, nil
}

// buildSubtype returns the subtype row for req.ItemType and rejects
// attributes that belong to a different subtype.
func buildSubtype(req *CreateItemRequest) (models.Subtype, error) {
	if err := checkSubtypeAttributes(req.ItemType, req.Jersey != nil, req.Shorts != nil, req.Outerwear != nil); err != nil {
		return nil, err
	}

	switch req.ItemType {
	case models.ItemTypeJersey:
		jersey := &models.Jersey{IsFanVersion: true, IsShortSleeve: true}
		applyJersey(jersey, req.Jersey)
		return jersey, nil
	case models.ItemTypeShorts:
		shorts := &models.Shorts{IsFanVersion: true}
		applyShorts(shorts, req.Shorts)
		return shorts, nil
	case models.ItemTypeOuterwear:
		if req.Outerwear == nil {
			return nil, newValidationError("outerwear.type", "Outerwear items require a type")
		}
		return &models.Outerwear{Type: req.Outerwear.Type}, nil
	case models.ItemTypeTracksuit:
		return &models.Tracksuit{}, nil
	}
	return nil, newValidationError("item_type", "Unsupported item type")
}

func checkSubtypeAttributes(itemType models.ItemType, hasJersey, hasShorts, hasOuterwear bool) error {
	mismatch := func(kind models.ItemType) error {
		return newValidationError(string(kind), fmt.Sprintf("%s attributes cannot be set on a %s item", kind, itemType))
	}
	if hasJersey && itemType != models.ItemTypeJersey {
		return mismatch(models.ItemTypeJersey)
	}
	if hasShorts && itemType != models.ItemTypeShorts {
		return mismatch(models.ItemTypeShorts)
	}
	if hasOuterwear && itemType != models.ItemTypeOuterwear {
		return mismatch(models.ItemTypeOuterwear)
	}
	return nil
}

func applyJersey(j *models.Jersey, attrs *JerseyAttributes) {
	if attrs == nil {
		return
	}
	j.KitID = attrs.KitID
	j.IsSigned = attrs.IsSigned
	j.HasNameset = attrs.HasNameset
	j.PlayerName = strings.TrimSpace(attrs.PlayerName)
	j.Number = attrs.Number
	if attrs.IsFanVersion != nil {
		j.IsFanVersion = *attrs.IsFanVersion
	}
	if attrs.IsShortSleeve != nil {
		j.IsShortSleeve = *attrs.IsShortSleeve
	}
}

func applyShorts(sh *models.Shorts, attrs *ShortsAttributes) {
	if attrs == nil {
		return
	}
	sh.Number = attrs.Number
	if attrs.IsFanVersion != nil {
		sh.IsFanVersion = *attrs.IsFanVersion
	}
}

// itemReferences are the single-valued foreign keys a request may set.
type itemReferences struct {
	MainColorID *uuid.UUID
	SizeID      *uuid.UUID
	BrandID     *uuid.UUID
	ClubID      *uuid.UUID
	SeasonID    *uuid.UUID
	KitTypeID   *uuid.UUID
}

func (s *itemService) checkReferences(ctx context.Context, refs itemReferences) error {
	if refs.MainColorID != nil {
		color, err := s.colors.GetByID(ctx, *refs.MainColorID)
		if err != nil {
			return err
		}
		if color == nil {
			return newValidationError("main_color_id", "Main color does not exist")
		}
	}
	if refs.SizeID != nil {
		size, err := s.sizes.GetByID(ctx, *refs.SizeID)
		if err != nil {
			return err
		}
		if size == nil {
			return newValidationError("size_id", "Size does not exist")
		}
	}

	for _, ref := range []struct {
		id    *uuid.UUID
		model interface{}
		field string
		label string
	}{
		{refs.BrandID, &models.Brand{}, "brand_id", "Brand"},
		{refs.ClubID, &models.Club{}, "club_id", "Club"},
		{refs.SeasonID, &models.Season{}, "season_id", "Season"},
		{refs.KitTypeID, &models.KitType{}, "kit_type_id", "Kit type"},
	} {
		if ref.id == nil {
			continue
		}
		ok, err := s.refs.Exists(ctx, ref.model, *ref.id)
		if err != nil {
			return err
		}
		if !ok {
			return newValidationError(ref.field, ref.label+" does not exist")
		}
	}
	return nil
}

func (s *itemService) loadColors(ctx context.Context, ids []uuid.UUID) ([]models.Color, error) {
	ids = uniqueIDs(ids)
	colors, err := s.colors.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(colors) != len(ids) {
		return nil, newValidationError("secondary_color_ids", "One or more secondary colors do not exist")
	}
	return colors, nil
}

func (s *itemService) loadCompetitions(ctx context.Context, ids []uuid.UUID) ([]models.Competition, error) {
	ids = uniqueIDs(ids)
	competitions, err := s.refs.GetCompetitions(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(competitions) != len(ids) {
		return nil, newValidationError("competition_ids", "One or more competitions do not exist")
	}
	return competitions, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *itemService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req *UpdateItemRequest) (*models.BaseItem, error) {
	if req == nil {
		req = &UpdateItemRequest{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated *models.BaseItem
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		item, err := s.getOwnedItem(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if err := checkSubtypeAttributes(item.ItemType, req.Jersey != nil, req.Shorts != nil, req.Outerwear != nil); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, itemReferences{
			MainColorID: req.MainColorID,
			SizeID:      req.SizeID,
			BrandID:     req.BrandID,
			ClubID:      req.ClubID,
			SeasonID:    req.SeasonID,
			KitTypeID:   req.KitTypeID,
		}); err != nil {
			return err
		}

		applyUpdate(item, req)
		if err := s.items.Update(ctx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}

		if err := s.updateSubtype(ctx, item, req); err != nil {
			return err
		}

		if req.CompetitionIDs != nil {
			competitions, err := s.loadCompetitions(ctx, *req.CompetitionIDs)
			if err != nil {
				return err
			}
			if err := s.items.ReplaceCompetitions(ctx, item, competitions); err != nil {
				return fmt.Errorf("failed to set competitions: %w", err)
			}
		}
		if req.SecondaryColorIDs != nil {
			colors, err := s.loadColors(ctx, *req.SecondaryColorIDs)
			if err != nil {
				return err
			}
			if err := s.items.ReplaceSecondaryColors(ctx, item, colors); err != nil {
				return fmt.Errorf("failed to set secondary colors: %w", err)
			}
		}

		updated, err = s.items.GetByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"item_id": itemID, "user_id": userID}).Info("Item updated")
	return updated, nil
}

func applyUpdate(item *models.BaseItem, req *UpdateItemRequest) {
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.BrandID != nil {
		item.BrandID = req.BrandID
	}
	if req.ClubID != nil {
		item.ClubID = req.ClubID
	}
	if req.SeasonID != nil {
		item.SeasonID = req.SeasonID
	}
	if req.KitTypeID != nil {
		item.KitTypeID = req.KitTypeID
	}
	if req.MainColorID != nil {
		item.MainColorID = req.MainColorID
	}
	if req.SizeID != nil {
		item.SizeID = req.SizeID
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.DetailedCondition != nil {
		item.DetailedCondition = *req.DetailedCondition
	}
	if req.Design != nil {
		item.Design = *req.Design
	}
	if req.Country != nil {
		item.Country = strings.ToUpper(*req.Country)
	}
	if req.IsReplica != nil {
		item.IsReplica = *req.IsReplica
	}
	if req.IsPrivate != nil {
		item.IsPrivate = *req.IsPrivate
	}
	if req.IsDraft != nil {
		item.IsDraft = *req.IsDraft
	}
}

func (s *itemService) updateSubtype(ctx context.Context, item *models.BaseItem, req *UpdateItemRequest) error {
	var subtype models.Subtype
	switch {
	case req.Jersey != nil && item.Jersey != nil:
		applyJersey(item.Jersey, req.Jersey)
		subtype = item.Jersey
	case req.Shorts != nil && item.Shorts != nil:
		applyShorts(item.Shorts, req.Shorts)
		subtype = item.Shorts
	case req.Outerwear != nil && item.Outerwear != nil:
		item.Outerwear.Type = req.Outerwear.Type
		subtype = item.Outerwear
	default:
		return nil
	}
	if err := s.items.UpdateSubtype(ctx, subtype); err != nil {
		return fmt.Errorf("failed to update %s: %w", item.ItemType, err)
	}
	return nil
}

func (s *itemService) PublishItem(ctx context.Context, userID, itemID uuid.UUID) (*models.BaseItem, error) {
	published := false
	return s.UpdateItem(ctx, userID, itemID, &UpdateItemRequest{IsDraft: &published})
}

// DeleteItem removes the item, its subtype row and its photos in one
// transaction. Stored photo objects are deleted by a background job.
func (s *itemService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	var keys []string
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.getOwnedItem(ctx, userID, itemID); err != nil {
			return err
		}

		photos, err := s.photos.ListForOwner(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return fmt.Errorf("failed to load photos: %w", err)
		}
		for i := range photos {
			keys = append(keys, photos[i].Keys()...)
		}
		if err := s.photos.DeleteForOwner(ctx, models.OwnerKindBaseItem, itemID); err != nil {
			return fmt.Errorf("failed to delete photos: %w", err)
		}
		if err := s.items.Delete(ctx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}

		if len(keys) > 0 {
			enqueueAfterCommit(ctx, s.jobs, jobs.DeleteObjects(keys...))
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.ItemsDeleted.Inc()
	logrus.WithFields(logrus.Fields{
		"item_id": itemID,
		"user_id": userID,
		"photos":  len(keys),
	}).Info("Item deleted")
	return nil
}

func (s *itemService) GetItemAnalytics(ctx context.Context, userID uuid.UUID) (*ItemAnalytics, error) {
	var err error
	analytics := &ItemAnalytics{}

	if analytics.TotalItems, err = s.items.Count(ctx, &userID); err != nil {
		return nil, err
	}
	if analytics.ByType, err = s.items.CountByType(ctx, &userID); err != nil {
		return nil, err
	}
	if analytics.ByBrand, err = s.items.CountGroupedBy(ctx, userID, repositories.GroupByBrand); err != nil {
		return nil, err
	}
	if analytics.ByClub, err = s.items.CountGroupedBy(ctx, userID, repositories.GroupByClub); err != nil {
		return nil, err
	}
	if analytics.BySeason, err = s.items.CountGroupedBy(ctx, userID, repositories.GroupBySeason); err != nil {
		return nil, err
	}
	if analytics.ByCondition, err = s.items.CountGroupedBy(ctx, userID, repositories.GroupByCondition); err != nil {
		return nil, err
	}
	return analytics, nil
}

func (s *itemService) GetUserItemCountByType(ctx context.Context, userID uuid.UUID) (map[models.ItemType]int64, error) {
	return s.items.CountByType(ctx, &userID)
}

func (s *itemService) CountItems(ctx context.Context, userID *uuid.UUID) (int64, error) {
	return s.items.Count(ctx, userID)
}
