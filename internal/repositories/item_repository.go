package repositories

import (
	"context"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/utils"
)

// ItemFilter translates domain filters into a base_items query. All set
// criteria are combined with AND.
type ItemFilter struct {
	OwnerID *uuid.UUID
	// VisibleTo limits results to the viewer's own items plus public,
	// published items of others. PublicOnly drops the own-items branch.
	VisibleTo  *uuid.UUID
	PublicOnly bool

	ItemType  models.ItemType
	Query     string
	BrandIDs  []uuid.UUID
	ClubIDs   []uuid.UUID
	SeasonIDs []uuid.UUID
	ColorIDs  []uuid.UUID
	SizeIDs   []uuid.UUID
	BrandName string
	ClubName  string
	IsDraft   *bool

	// Country matches the club's country or the item's own.
	Country           string
	SeasonYear        string
	CompetitionIDs    []uuid.UUID
	KitTypeIDs        []uuid.UUID
	KitCategory       string
	HasNameset        *bool
	MainColorIDs      []uuid.UUID
	SecondaryColorIDs []uuid.UUID

	Order ItemOrder
	// Seed drives OrderRandom. The same seed yields the same order.
	Seed int64

	Pagination utils.PaginationParams
}

// ItemOrder selects how Filter sorts its results.
type ItemOrder int

const (
	OrderNewest ItemOrder = iota
	OrderRandom
)

type ItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.BaseItem, error)
	Filter(ctx context.Context, filter ItemFilter) ([]models.BaseItem, int64, error)
	Create(ctx context.Context, item *models.BaseItem) error
	CreateSubtype(ctx context.Context, subtype models.Subtype) error
	Update(ctx context.Context, item *models.BaseItem) error
	SetMainImageURL(ctx context.Context, id uuid.UUID, url string) error
	UpdateSubtype(ctx context.Context, subtype models.Subtype) error
	ReplaceCompetitions(ctx context.Context, item *models.BaseItem, competitions []models.Competition) error
	ReplaceSecondaryColors(ctx context.Context, item *models.BaseItem, colors []models.Color) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context, userID *uuid.UUID) (map[models.ItemType]int64, error)
	CountGroupedBy(ctx context.Context, userID uuid.UUID, group ItemGroup) ([]LabelCount, error)
	Count(ctx context.Context, userID *uuid.UUID) (int64, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.BaseItem, error)
}

// ItemGroup selects the dimension for grouped item counts.
type ItemGroup string

const (
	GroupByBrand     ItemGroup = "brand"
	GroupByClub      ItemGroup = "club"
	GroupBySeason    ItemGroup = "season"
	GroupByCondition ItemGroup = "condition"
)

type gormItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &gormItemRepository{db: db}
}

func (r *gormItemRepository) withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Brand").
		Preload("Club").
		Preload("Season").
		Preload("KitType").
		Preload("MainColor").
		Preload("Size").
		Preload("Competitions").
		Preload("SecondaryColors").
		Preload("Jersey").
		Preload("Shorts").
		Preload("Outerwear").
		Preload("Tracksuit")
}

func (r *gormItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BaseItem, error) {
	var item models.BaseItem
	err := r.withDetails(database.Conn(ctx, r.db)).Where("id = ?", id).First(&item).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormItemRepository) applyFilter(q *gorm.DB, f ItemFilter) *gorm.DB {
	q = q.Model(&models.BaseItem{}).
		Joins("LEFT JOIN clubs ON clubs.id = base_items.club_id").
		Joins("LEFT JOIN brands ON brands.id = base_items.brand_id")

	if f.OwnerID != nil {
		q = q.Where("base_items.user_id = ?", *f.OwnerID)
	}
	switch {
	case f.PublicOnly:
		q = q.Where("base_items.is_private = ? AND base_items.is_draft = ?", false, false)
	case f.VisibleTo != nil:
		q = q.Where("(base_items.user_id = ? OR (base_items.is_private = ? AND base_items.is_draft = ?))", *f.VisibleTo, false, false)
	}

	if f.ItemType != "" {
		q = q.Where("base_items.item_type = ?", f.ItemType)
	}
	if f.IsDraft != nil {
		q = q.Where("base_items.is_draft = ?", *f.IsDraft)
	}
	if f.Query != "" {
		pattern := likePattern(f.Query)
		q = q.Where("("+ilike("base_items.name")+" OR "+ilike("clubs.name")+" OR "+ilike("brands.name")+")", pattern, pattern, pattern)
	}
	if len(f.BrandIDs) > 0 {
		q = q.Where("base_items.brand_id IN ?", f.BrandIDs)
	}
	if len(f.ClubIDs) > 0 {
		q = q.Where("base_items.club_id IN ?", f.ClubIDs)
	}
	if len(f.SeasonIDs) > 0 {
		q = q.Where("base_items.season_id IN ?", f.SeasonIDs)
	}
	if len(f.SizeIDs) > 0 {
		q = q.Where("base_items.size_id IN ?", f.SizeIDs)
	}
	if len(f.ColorIDs) > 0 {
		q = q.Where(
			"(base_items.main_color_id IN ? OR EXISTS (SELECT 1 FROM base_item_secondary_colors sc WHERE sc.base_item_id = base_items.id AND sc.color_id IN ?))",
			f.ColorIDs, f.ColorIDs,
		)
	}
	if len(f.MainColorIDs) > 0 {
		q = q.Where("base_items.main_color_id IN ?", f.MainColorIDs)
	}
	if len(f.SecondaryColorIDs) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM base_item_secondary_colors sc WHERE sc.base_item_id = base_items.id AND sc.color_id IN ?)", f.SecondaryColorIDs)
	}
	if len(f.CompetitionIDs) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM base_item_competitions bc WHERE bc.base_item_id = base_items.id AND bc.competition_id IN ?)", f.CompetitionIDs)
	}
	if len(f.KitTypeIDs) > 0 {
		q = q.Where("base_items.kit_type_id IN ?", f.KitTypeIDs)
	}
	if f.KitCategory != "" {
		q = q.Where("base_items.kit_type_id IN (SELECT id FROM kit_types WHERE category = ?)", f.KitCategory)
	}
	if f.SeasonYear != "" {
		q = q.Where("base_items.season_id IN (SELECT id FROM seasons WHERE year = ?)", f.SeasonYear)
	}
	if f.Country != "" {
		q = q.Where("(clubs.country = ? OR base_items.country = ?)", f.Country, f.Country)
	}
	if f.HasNameset != nil {
		q = q.Where("EXISTS (SELECT 1 FROM jerseys j WHERE j.base_item_id = base_items.id AND j.has_nameset = ?)", *f.HasNameset)
	}
	if f.BrandName != "" {
		q = q.Where(ilike("brands.name"), likePattern(f.BrandName))
	}
	if f.ClubName != "" {
		q = q.Where(ilike("clubs.name"), likePattern(f.ClubName))
	}
	return q
}

func (r *gormItemRepository) Filter(ctx context.Context, f ItemFilter) ([]models.BaseItem, int64, error) {
	if f.Order == OrderRandom {
		return r.filterShuffled(ctx, f)
	}

	var total int64
	if err := r.applyFilter(database.Conn(ctx, r.db), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.BaseItem, 0)
	q := r.applyFilter(database.Conn(ctx, r.db), f).
		Select("base_items.*").
		Order("base_items.created_at DESC").
		Order("base_items.id")
	q = utils.ApplyPagination(q, f.Pagination)
	if err := r.withDetails(q).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// filterShuffled orders the matching ids with a PRNG seeded by f.Seed and
// loads only the requested page.
func (r *gormItemRepository) filterShuffled(ctx context.Context, f ItemFilter) ([]models.BaseItem, int64, error) {
	var ids []uuid.UUID
	err := r.applyFilter(database.Conn(ctx, r.db), f).
		Order("base_items.id").
		Pluck("base_items.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(ids))

	rng := rand.New(rand.NewSource(f.Seed))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	ids = pageOf(ids, f.Pagination)

	items := make([]models.BaseItem, 0, len(ids))
	if len(ids) == 0 {
		return items, total, nil
	}
	if err := r.withDetails(database.Conn(ctx, r.db)).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.Slice(items, func(i, j int) bool { return pos[items[i].ID] < pos[items[j].ID] })
	return items, total, nil
}

func pageOf(ids []uuid.UUID, p utils.PaginationParams) []uuid.UUID {
	if p.Limit <= 0 {
		return ids
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * p.Limit
	if start >= len(ids) {
		return nil
	}
	end := start + p.Limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}

func (r *gormItemRepository) Create(ctx context.Context, item *models.BaseItem) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(item).Error
}

func (r *gormItemRepository) CreateSubtype(ctx context.Context, subtype models.Subtype) error {
	return database.Conn(ctx, r.db).Create(subtype).Error
}

func (r *gormItemRepository) Update(ctx context.Context, item *models.BaseItem) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(item).Error
}

func (r *gormItemRepository) SetMainImageURL(ctx context.Context, id uuid.UUID, url string) error {
	return database.Conn(ctx, r.db).Model(&models.BaseItem{}).Where("id = ?", id).Update("main_image_url", url).Error
}

func (r *gormItemRepository) UpdateSubtype(ctx context.Context, subtype models.Subtype) error {
	return database.Conn(ctx, r.db).Save(subtype).Error
}

func (r *gormItemRepository) ReplaceCompetitions(ctx context.Context, item *models.BaseItem, competitions []models.Competition) error {
	assoc := database.Conn(ctx, r.db).Model(item).Association("Competitions")
	if len(competitions) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(competitions)
}

func (r *gormItemRepository) ReplaceSecondaryColors(ctx context.Context, item *models.BaseItem, colors []models.Color) error {
	assoc := database.Conn(ctx, r.db).Model(item).Association("SecondaryColors")
	if len(colors) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(colors)
}

// Delete removes the base row together with its subtype row and join rows.
// Photos are owned by the photo repository and removed by the caller.
func (r *gormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := database.Conn(ctx, r.db)
	for _, subtype := range []interface{}{&models.Jersey{}, &models.Shorts{}, &models.Outerwear{}, &models.Tracksuit{}} {
		if err := db.Where("base_item_id = ?", id).Delete(subtype).Error; err != nil {
			return err
		}
	}
	if err := db.Exec("DELETE FROM base_item_competitions WHERE base_item_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM base_item_secondary_colors WHERE base_item_id = ?", id).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&models.BaseItem{}).Error
}

func (r *gormItemRepository) CountByType(ctx context.Context, userID *uuid.UUID) (map[models.ItemType]int64, error) {
	var rows []struct {
		ItemType models.ItemType
		Count    int64
	}
	q := database.Conn(ctx, r.db).Model(&models.BaseItem{}).Select("item_type, COUNT(*) AS count")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Group("item_type").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.ItemType]int64, len(models.ItemTypes))
	for _, t := range models.ItemTypes {
		counts[t] = 0
	}
	for _, row := range rows {
		counts[row.ItemType] = row.Count
	}
	return counts, nil
}

func (r *gormItemRepository) CountGroupedBy(ctx context.Context, userID uuid.UUID, group ItemGroup) ([]LabelCount, error) {
	q := database.Conn(ctx, r.db).Model(&models.BaseItem{}).Where("base_items.user_id = ?", userID)

	switch group {
	case GroupByBrand:
		q = q.Select("brands.id AS id, brands.name AS label, COUNT(*) AS count").
			Joins("JOIN brands ON brands.id = base_items.brand_id").
			Group("brands.id, brands.name")
	case GroupByClub:
		q = q.Select("clubs.id AS id, clubs.name AS label, COUNT(*) AS count").
			Joins("JOIN clubs ON clubs.id = base_items.club_id").
			Group("clubs.id, clubs.name")
	case GroupBySeason:
		q = q.Select("seasons.id AS id, seasons.year AS label, COUNT(*) AS count").
			Joins("JOIN seasons ON seasons.id = base_items.season_id").
			Group("seasons.id, seasons.year")
	case GroupByCondition:
		q = q.Select("CAST(base_items.condition_score AS TEXT) AS label, COUNT(*) AS count").
			Group("base_items.condition_score")
	default:
		return nil, nil
	}

	rows := make([]LabelCount, 0)
	if err := q.Order("count DESC").Order("label").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormItemRepository) Count(ctx context.Context, userID *uuid.UUID) (int64, error) {
	var count int64
	q := database.Conn(ctx, r.db).Model(&models.BaseItem{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *gormItemRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.BaseItem, error) {
	items := make([]models.BaseItem, 0)
	err := r.withDetails(database.Conn(ctx, r.db)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&items).Error
	return items, err
}
