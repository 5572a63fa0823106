package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/config"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/storage"
	"github.com/footycollect/footycollect-api/internal/testutil"
	"github.com/footycollect/footycollect-api/internal/utils"
)

func testPhotoConfig() config.PhotoConfig {
	return config.PhotoConfig{
		MaxPerItem:   10,
		MaxSizeBytes: 1024 * 1024,
		MaxDimension: 64,
		JPEGQuality:  80,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// pngBytes renders a w x h PNG filled with one color.
func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 20, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUpload(t testing.TB, name string) PhotoUpload {
	return PhotoUpload{Filename: name, Data: bytes.NewReader(pngBytes(t, 8, 8))}
}

type ServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	store    *storage.LocalStore
	recorder *jobs.Recorder
	deps     *Dependencies
	registry *Registry

	items      ItemService
	photos     PhotoService
	colors     ColorService
	sizes      SizeService
	collection CollectionService

	owner *models.User
	other *models.User
}

func (s *ServiceTestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.ctx = context.Background()

	store, err := storage.NewLocalStore(s.T().TempDir(), "http://localhost/media")
	s.Require().NoError(err)
	s.store = store
	s.recorder = &jobs.Recorder{}

	s.deps = NewDependencies(s.db, s.store, s.recorder, nil, testPhotoConfig())
	s.registry = NewDefaultRegistry(s.deps)
	s.items = NewItemService(s.deps)
	s.photos = NewPhotoService(s.deps)
	s.colors = NewColorService(s.deps)
	s.sizes = NewSizeService(s.deps)
	s.collection = NewCollectionService(s.db, s.items, s.photos, s.colors, s.sizes)

	s.owner = testutil.CreateUser(s.T(), s.db, "owner")
	s.other = testutil.CreateUser(s.T(), s.db, "other")
}

func (s *ServiceTestSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func (s *ServiceTestSuite) createJersey(owner uuid.UUID, name string, mutate ...func(*CreateItemRequest)) *models.BaseItem {
	req := &CreateItemRequest{ItemType: models.ItemTypeJersey, Name: name}
	for _, m := range mutate {
		m(req)
	}
	item, err := s.items.CreateItem(s.ctx, owner, req)
	s.Require().NoError(err)
	return item
}

func (s *ServiceTestSuite) orders(itemID uuid.UUID) []int {
	photos, err := s.photos.GetPhotosForItem(s.ctx, &s.owner.ID, itemID)
	s.Require().NoError(err)
	out := make([]int, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.Order)
	}
	return out
}

func (s *ServiceTestSuite) mainPhotos(itemID uuid.UUID) int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.Photo{}).
		Where("owner_id = ? AND is_main = ?", itemID, true).Count(&n).Error)
	return n
}

// Items

func (s *ServiceTestSuite) TestCreateItemCreatesBaseAndSubtype() {
	cases := []struct {
		req   CreateItemRequest
		model interface{}
	}{
		{CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "Home"}, &models.Jersey{}},
		{CreateItemRequest{ItemType: models.ItemTypeShorts, Name: "Shorts"}, &models.Shorts{}},
		{CreateItemRequest{ItemType: models.ItemTypeOuterwear, Name: "Anthem", Outerwear: &OuterwearAttributes{Type: models.OuterwearType("jacket")}}, &models.Outerwear{}},
		{CreateItemRequest{ItemType: models.ItemTypeTracksuit, Name: "Training"}, &models.Tracksuit{}},
	}
	for _, tc := range cases {
		req := tc.req
		item, err := s.items.CreateItem(s.ctx, s.owner.ID, &req)
		s.Require().NoError(err)
		s.Equal(req.ItemType, item.ItemType)
		s.Equal(req.ItemType, item.Subtype().Kind())

		var n int64
		s.Require().NoError(s.db.Model(tc.model).Where("base_item_id = ?", item.ID).Count(&n).Error)
		s.Equal(int64(1), n, "subtype row for %s", req.ItemType)
	}
	s.Equal(int64(4), s.count(&models.BaseItem{}))
}

func (s *ServiceTestSuite) TestCreateItemDefaults() {
	item := s.createJersey(s.owner.ID, "Away")
	s.Equal(10, item.Condition)
	s.Equal(models.ConditionBNWT, item.DetailedCondition)
	s.Equal(models.DesignPlain, item.Design)
	s.False(item.IsDraft)
	s.Require().NotNil(item.Jersey)
	s.True(item.Jersey.IsFanVersion)
	s.True(item.Jersey.IsShortSleeve)
}

func (s *ServiceTestSuite) TestCreateItemValidation() {
	_, err := s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{ItemType: models.ItemTypeJersey})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{ItemType: "socks", Name: "Socks"})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{ItemType: models.ItemTypeOuterwear, Name: "No type"})
	s.ErrorIs(err, ErrValidationFailed)

	_, err = s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{
		ItemType: models.ItemTypeShorts,
		Name:     "Mismatch",
		Jersey:   &JerseyAttributes{PlayerName: "Messi"},
	})
	s.ErrorIs(err, ErrValidationFailed)

	missing := uuid.New()
	_, err = s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "Bad size", SizeID: &missing})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("size_id", verr.Fields[0].Field)

	s.Zero(s.count(&models.BaseItem{}))
	s.Zero(s.count(&models.Jersey{}))
}

func (s *ServiceTestSuite) TestUnknownReferencesAreValidationErrors() {
	missing := uuid.New()
	cases := map[string]func(*CreateItemRequest){
		"brand_id":    func(r *CreateItemRequest) { r.BrandID = &missing },
		"club_id":     func(r *CreateItemRequest) { r.ClubID = &missing },
		"season_id":   func(r *CreateItemRequest) { r.SeasonID = &missing },
		"kit_type_id": func(r *CreateItemRequest) { r.KitTypeID = &missing },
	}
	for field, mutate := range cases {
		req := &CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "Dangling " + field}
		mutate(req)
		_, err := s.items.CreateItem(s.ctx, s.owner.ID, req)
		var verr *ValidationError
		s.Require().ErrorAs(err, &verr, field)
		s.Equal(field, verr.Fields[0].Field)
	}
	s.Zero(s.count(&models.BaseItem{}))

	item := s.createJersey(s.owner.ID, "Home")
	_, err := s.items.UpdateItem(s.ctx, s.owner.ID, item.ID, &UpdateItemRequest{ClubID: &missing})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("club_id", verr.Fields[0].Field)

	club := testutil.CreateClub(s.T(), s.db, "Real Betis")
	updated, err := s.items.UpdateItem(s.ctx, s.owner.ID, item.ID, &UpdateItemRequest{ClubID: &club.ID})
	s.Require().NoError(err)
	s.Equal(club.ID, *updated.ClubID)
}

func (s *ServiceTestSuite) TestCreateItemWithColorsAndCompetitions() {
	_, err := s.colors.InitializeDefaultColors(s.ctx)
	s.Require().NoError(err)
	red, err := s.deps.Colors.GetByName(s.ctx, "RED")
	s.Require().NoError(err)
	white, err := s.deps.Colors.GetByName(s.ctx, "WHITE")
	s.Require().NoError(err)
	league, err := s.deps.References.GetOrCreateCompetition(s.ctx, &models.Competition{Name: "La Liga"})
	s.Require().NoError(err)

	item := s.createJersey(s.owner.ID, "Home", func(r *CreateItemRequest) {
		r.MainColorID = &red.ID
		r.SecondaryColorIDs = []uuid.UUID{white.ID, white.ID}
		r.CompetitionIDs = []uuid.UUID{league.ID}
	})
	s.Require().NotNil(item.MainColor)
	s.Equal("RED", item.MainColor.Name)
	s.Len(item.SecondaryColors, 1)
	s.Len(item.Competitions, 1)
}

func (s *ServiceTestSuite) TestGetItemHonoursVisibility() {
	private := s.createJersey(s.owner.ID, "Private", func(r *CreateItemRequest) { r.IsPrivate = true })

	_, err := s.items.GetItem(s.ctx, &s.owner.ID, private.ID)
	s.NoError(err)
	_, err = s.items.GetItem(s.ctx, &s.other.ID, private.ID)
	s.ErrorIs(err, ErrItemNotFound)
	_, err = s.items.GetItem(s.ctx, nil, private.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ServiceTestSuite) TestSearchItemsVisibility() {
	barca := testutil.CreateClub(s.T(), s.db, "FC Barcelona")
	nike := testutil.CreateBrand(s.T(), s.db, "Nike")
	withClub := func(r *CreateItemRequest) { r.ClubID = &barca.ID }

	s.createJersey(s.owner.ID, "My private shirt", withClub, func(r *CreateItemRequest) { r.IsPrivate = true })
	s.createJersey(s.owner.ID, "My draft", withClub, func(r *CreateItemRequest) { r.IsDraft = true })
	s.createJersey(s.other.ID, "Their public shirt", withClub)
	s.createJersey(s.other.ID, "Their private", withClub, func(r *CreateItemRequest) { r.IsPrivate = true })
	s.createJersey(s.other.ID, "Their draft", withClub, func(r *CreateItemRequest) { r.IsDraft = true })
	s.createJersey(s.other.ID, "Barcelona retro", func(r *CreateItemRequest) { r.BrandID = &nike.ID })
	s.createJersey(s.other.ID, "Unrelated")

	items, total, err := s.items.SearchItems(s.ctx, &s.owner.ID, "barcelona", ItemSearchParams{})
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	s.ElementsMatch([]string{"My private shirt", "My draft", "Their public shirt", "Barcelona retro"}, names)

	items, _, err = s.items.SearchItems(s.ctx, nil, "BARCELONA", ItemSearchParams{})
	s.Require().NoError(err)
	s.Len(items, 2)

	items, _, err = s.items.SearchItems(s.ctx, &s.owner.ID, "barcelona", ItemSearchParams{BrandName: "nik"})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("Barcelona retro", items[0].Name)
}

func (s *ServiceTestSuite) TestSearchItemsOrderedByRecency() {
	first := s.createJersey(s.owner.ID, "Shirt one")
	s.Require().NoError(s.db.Model(&models.BaseItem{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	s.createJersey(s.owner.ID, "Shirt two")

	items, _, err := s.items.SearchItems(s.ctx, &s.owner.ID, "shirt", ItemSearchParams{})
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Shirt two", items[0].Name)
}

func (s *ServiceTestSuite) feedNames(params FeedParams) []string {
	items, _, err := s.items.GetPublicItems(s.ctx, params)
	s.Require().NoError(err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func (s *ServiceTestSuite) TestPublicFeedFilters() {
	_, err := s.colors.InitializeDefaultColors(s.ctx)
	s.Require().NoError(err)
	red, err := s.deps.Colors.GetByName(s.ctx, "RED")
	s.Require().NoError(err)
	league, err := s.deps.References.GetOrCreateCompetition(s.ctx, &models.Competition{Name: "La Liga"})
	s.Require().NoError(err)
	home, err := s.deps.References.GetOrCreateKitType(s.ctx, "Home", "match")
	s.Require().NoError(err)
	training, err := s.deps.References.GetOrCreateKitType(s.ctx, "Training", "training")
	s.Require().NoError(err)
	season, err := s.deps.References.GetOrCreateSeason(s.ctx, "2010-11")
	s.Require().NoError(err)
	barca := testutil.CreateClub(s.T(), s.db, "FC Barcelona")
	s.Require().NoError(s.db.Model(barca).Update("country", "ES").Error)

	s.createJersey(s.owner.ID, "Barca home", func(r *CreateItemRequest) {
		r.ClubID = &barca.ID
		r.KitTypeID = &home.ID
		r.SeasonID = &season.ID
		r.CompetitionIDs = []uuid.UUID{league.ID}
		r.MainColorID = &red.ID
		r.Jersey = &JerseyAttributes{HasNameset: true, PlayerName: "Xavi"}
	})
	s.createJersey(s.other.ID, "Local shirt", func(r *CreateItemRequest) {
		r.Country = "es"
		r.SecondaryColorIDs = []uuid.UUID{red.ID}
	})
	s.createJersey(s.other.ID, "Private ES", func(r *CreateItemRequest) {
		r.Country = "ES"
		r.IsPrivate = true
	})
	s.createJersey(s.other.ID, "Training top", func(r *CreateItemRequest) { r.KitTypeID = &training.ID })

	s.Len(s.feedNames(FeedParams{}), 3)
	s.ElementsMatch([]string{"Barca home", "Local shirt"}, s.feedNames(FeedParams{Country: "es"}))
	s.Equal([]string{"Barca home"}, s.feedNames(FeedParams{CompetitionIDs: []uuid.UUID{league.ID}}))
	s.Equal([]string{"Barca home"}, s.feedNames(FeedParams{HasNameset: true}))
	s.Equal([]string{"Barca home"}, s.feedNames(FeedParams{Season: "2010-11"}))
	s.Equal([]string{"Barca home"}, s.feedNames(FeedParams{MainColorIDs: []uuid.UUID{red.ID}}))
	s.Equal([]string{"Local shirt"}, s.feedNames(FeedParams{SecondaryColorIDs: []uuid.UUID{red.ID}}))
	s.Equal([]string{"Training top"}, s.feedNames(FeedParams{Category: "training"}))
	s.Equal([]string{"Barca home"}, s.feedNames(FeedParams{KitTypeIDs: []uuid.UUID{home.ID}, Country: "ES"}))
	s.Empty(s.feedNames(FeedParams{Country: "GB"}))

	_, _, err = s.items.GetPublicItems(s.ctx, FeedParams{Country: "ESP"})
	s.ErrorIs(err, ErrValidationFailed)
	_, _, err = s.items.GetPublicItems(s.ctx, FeedParams{Sort: "popular"})
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *ServiceTestSuite) TestPublicFeedRandomOrderIsStable() {
	for i := 0; i < 12; i++ {
		s.createJersey(s.owner.ID, fmt.Sprintf("Shirt %02d", i))
	}
	page := func(n int, seed int64) []string {
		return s.feedNames(FeedParams{
			PaginationParams: utils.PaginationParams{Page: n, Limit: 5},
			Sort:             FeedSortRandom,
			Seed:             seed,
		})
	}

	first := append(append(page(1, 42), page(2, 42)...), page(3, 42)...)
	s.Len(first, 12)
	seen := make(map[string]bool)
	for _, name := range first {
		s.False(seen[name], "%s repeated across pages", name)
		seen[name] = true
	}
	again := append(append(page(1, 42), page(2, 42)...), page(3, 42)...)
	s.Equal(first, again)

	// Without a seed the order still repeats for the same filters.
	s.Equal(page(1, 0), page(1, 0))

	items, total, err := s.items.GetPublicItems(s.ctx, FeedParams{
		PaginationParams: utils.PaginationParams{Page: 4, Limit: 5},
		Sort:             FeedSortRandom,
	})
	s.Require().NoError(err)
	s.Empty(items)
	s.EqualValues(12, total)
}

func (s *ServiceTestSuite) TestUpdateItem() {
	item := s.createJersey(s.owner.ID, "Home")
	name := "Home 23/24"
	private := true
	number := 10

	updated, err := s.items.UpdateItem(s.ctx, s.owner.ID, item.ID, &UpdateItemRequest{
		Name:      &name,
		IsPrivate: &private,
		Jersey:    &JerseyAttributes{PlayerName: "Pedri", Number: &number},
	})
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.True(updated.IsPrivate)
	s.Equal("Pedri", updated.Jersey.PlayerName)
	s.Equal(10, *updated.Jersey.Number)

	_, err = s.items.UpdateItem(s.ctx, s.other.ID, item.ID, &UpdateItemRequest{Name: &name})
	s.ErrorIs(err, ErrForbiddenOperation)

	_, err = s.items.UpdateItem(s.ctx, s.owner.ID, item.ID, &UpdateItemRequest{Shorts: &ShortsAttributes{}})
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *ServiceTestSuite) TestPublishItem() {
	item := s.createJersey(s.owner.ID, "Draft", func(r *CreateItemRequest) { r.IsDraft = true })
	published, err := s.items.PublishItem(s.ctx, s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.False(published.IsDraft)
}

func (s *ServiceTestSuite) TestDeleteItemCascades() {
	item := s.createJersey(s.owner.ID, "Home")
	_, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "a.png"))
	s.Require().NoError(err)
	_, err = s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "b.png"))
	s.Require().NoError(err)
	s.recorder.Reset()

	s.ErrorIs(s.items.DeleteItem(s.ctx, s.other.ID, item.ID), ErrForbiddenOperation)
	s.Require().NoError(s.items.DeleteItem(s.ctx, s.owner.ID, item.ID))

	s.Zero(s.count(&models.BaseItem{}))
	s.Zero(s.count(&models.Jersey{}))
	s.Zero(s.count(&models.Photo{}))

	deletions := s.recorder.OfType(jobs.TypeDeleteObjects)
	s.Require().Len(deletions, 1)
	s.Len(deletions[0].Keys, 2)

	s.ErrorIs(s.items.DeleteItem(s.ctx, s.owner.ID, item.ID), ErrItemNotFound)
}

func (s *ServiceTestSuite) TestItemAnalytics() {
	nike := testutil.CreateBrand(s.T(), s.db, "Nike")
	s.createJersey(s.owner.ID, "One", func(r *CreateItemRequest) { r.BrandID = &nike.ID })
	s.createJersey(s.owner.ID, "Two", func(r *CreateItemRequest) { r.BrandID = &nike.ID })
	_, err := s.items.CreateItem(s.ctx, s.owner.ID, &CreateItemRequest{ItemType: models.ItemTypeShorts, Name: "Shorts"})
	s.Require().NoError(err)
	s.createJersey(s.other.ID, "Not mine")

	analytics, err := s.items.GetItemAnalytics(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), analytics.TotalItems)
	s.Equal(int64(2), analytics.ByType[models.ItemTypeJersey])
	s.Equal(int64(1), analytics.ByType[models.ItemTypeShorts])
	s.Equal(int64(0), analytics.ByType[models.ItemTypeTracksuit])
	s.Require().NotEmpty(analytics.ByBrand)
	s.Equal("Nike", analytics.ByBrand[0].Label)
	s.Equal(int64(2), analytics.ByBrand[0].Count)
}

// Photos

func (s *ServiceTestSuite) TestCreatePhotoOrderingAndMain() {
	item := s.createJersey(s.owner.ID, "Home")

	first, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "front.png"))
	s.Require().NoError(err)
	second, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "back.png"))
	s.Require().NoError(err)

	s.Equal(0, first.Order)
	s.Equal(1, second.Order)
	s.True(first.IsMain)
	s.False(second.IsMain)
	s.Equal("image/png", first.ContentType)

	reloaded, err := s.items.GetItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(first.ImageURL, reloaded.MainImageURL)

	s.Len(s.recorder.OfType(jobs.TypeConvertPhoto), 2)
}

func (s *ServiceTestSuite) TestCreatePhotoRejectsBadInput() {
	item := s.createJersey(s.owner.ID, "Home")

	_, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, PhotoUpload{Filename: "x.txt", Data: bytes.NewReader([]byte("not an image"))})
	s.ErrorIs(err, ErrUnsupportedImage)

	big := make([]byte, testPhotoConfig().MaxSizeBytes+10)
	copy(big, pngBytes(s.T(), 2, 2))
	_, err = s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, PhotoUpload{Filename: "big.png", Data: bytes.NewReader(big)})
	s.ErrorIs(err, ErrImageTooLarge)

	_, err = s.photos.CreatePhoto(s.ctx, s.other.ID, item.ID, newUpload(s.T(), "a.png"))
	s.ErrorIs(err, ErrForbiddenOperation)

	s.Zero(s.count(&models.Photo{}))
}

func (s *ServiceTestSuite) TestPhotoLimit() {
	item := s.createJersey(s.owner.ID, "Home")
	for i := 0; i < testPhotoConfig().MaxPerItem; i++ {
		_, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "p.png"))
		s.Require().NoError(err)
	}
	_, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "p.png"))
	s.ErrorIs(err, ErrPhotoLimit)
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *ServiceTestSuite) TestSetMainPhotoSwapsAtomically() {
	item := s.createJersey(s.owner.ID, "Home")
	first, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "a.png"))
	s.Require().NoError(err)
	second, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "b.png"))
	s.Require().NoError(err)

	main, err := s.photos.SetMainPhoto(s.ctx, s.owner.ID, item.ID, second.ID)
	s.Require().NoError(err)
	s.Equal(second.ID, main.ID)
	s.Equal(int64(1), s.mainPhotos(item.ID))

	got, err := s.photos.GetMainPhoto(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(second.ID, got.ID)

	reloaded, err := s.items.GetItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(second.ImageURL, reloaded.MainImageURL)

	_, err = s.photos.SetMainPhoto(s.ctx, s.other.ID, item.ID, first.ID)
	s.ErrorIs(err, ErrForbiddenOperation)

	otherItem := s.createJersey(s.owner.ID, "Away")
	_, err = s.photos.SetMainPhoto(s.ctx, s.owner.ID, otherItem.ID, first.ID)
	s.ErrorIs(err, ErrPhotoNotOnItem)
	s.Equal(int64(1), s.mainPhotos(item.ID))
}

func (s *ServiceTestSuite) TestDeletePhotoRenumbersAndPromotesMain() {
	item := s.createJersey(s.owner.ID, "Home")
	var ids []uuid.UUID
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), name))
		s.Require().NoError(err)
		ids = append(ids, p.ID)
	}

	s.Require().NoError(s.photos.DeletePhoto(s.ctx, s.owner.ID, ids[0]))
	s.Equal([]int{0, 1}, s.orders(item.ID))
	s.Equal(int64(1), s.mainPhotos(item.ID))

	main, err := s.photos.GetMainPhoto(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(ids[1], main.ID)

	s.ErrorIs(s.photos.DeletePhoto(s.ctx, s.other.ID, ids[1]), ErrForbiddenOperation)
	s.ErrorIs(s.photos.DeletePhoto(s.ctx, s.owner.ID, uuid.New()), ErrPhotoNotFound)
}

func (s *ServiceTestSuite) TestReorderPhotos() {
	item := s.createJersey(s.owner.ID, "Home")
	var ids []uuid.UUID
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		p, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), name))
		s.Require().NoError(err)
		ids = append(ids, p.ID)
	}

	ordered, err := s.photos.ReorderPhotos(s.ctx, s.owner.ID, item.ID, []uuid.UUID{ids[2], ids[0], ids[1]})
	s.Require().NoError(err)
	s.Equal(ids[2], ordered[0].ID)

	photos, err := s.photos.GetPhotosForItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{ids[2], ids[0], ids[1]}, []uuid.UUID{photos[0].ID, photos[1].ID, photos[2].ID})

	_, err = s.photos.ReorderPhotos(s.ctx, s.owner.ID, item.ID, []uuid.UUID{ids[0], ids[1]})
	s.ErrorIs(err, ErrValidationFailed)
}

func (s *ServiceTestSuite) TestUnattachedUploadAttachAndPurge() {
	item := s.createJersey(s.owner.ID, "Home")
	loose, err := s.photos.UploadUnattachedPhoto(s.ctx, s.owner.ID, newUpload(s.T(), "loose.png"))
	s.Require().NoError(err)
	s.Nil(loose.OwnerID)

	stale, err := s.photos.UploadUnattachedPhoto(s.ctx, s.owner.ID, newUpload(s.T(), "stale.png"))
	s.Require().NoError(err)
	s.Require().NoError(s.db.Model(&models.Photo{}).Where("id = ?", stale.ID).
		Update("uploaded_at", time.Now().UTC().Add(-48*time.Hour)).Error)

	_, err = s.photos.AttachPhotos(s.ctx, s.other.ID, item.ID, []uuid.UUID{loose.ID})
	s.ErrorIs(err, ErrForbiddenOperation)

	attached, err := s.photos.AttachPhotos(s.ctx, s.owner.ID, item.ID, []uuid.UUID{loose.ID})
	s.Require().NoError(err)
	s.Require().Len(attached, 1)
	s.Equal(item.ID, *attached[0].OwnerID)
	s.True(attached[0].IsMain)

	s.recorder.Reset()
	purged, err := s.photos.PurgeOrphanedPhotos(s.ctx, 24*time.Hour)
	s.Require().NoError(err)
	s.Equal(1, purged)
	s.Equal(int64(1), s.count(&models.Photo{}))
	s.Len(s.recorder.OfType(jobs.TypeDeleteObjects), 1)
}

func (s *ServiceTestSuite) TestConvertPhotoStoresOptimizedVariant() {
	item := s.createJersey(s.owner.ID, "Home")
	photo, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, PhotoUpload{
		Filename: "huge.png",
		Data:     bytes.NewReader(pngBytes(s.T(), 200, 100)),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.photos.ConvertPhoto(s.ctx, photo.ID))

	var stored models.Photo
	s.Require().NoError(s.db.First(&stored, "id = ?", photo.ID).Error)
	s.Equal(storage.OptimizedKey(photo.ImageKey), stored.OptimizedKey)
	s.NotEmpty(stored.OptimizedURL)

	rc, err := s.store.Download(s.ctx, stored.OptimizedKey)
	s.Require().NoError(err)
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	s.Require().NoError(err)
	s.Equal("jpeg", format)
	s.Equal(64, cfg.Width)
	s.Equal(32, cfg.Height)

	reloaded, err := s.items.GetItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Equal(stored.OptimizedURL, reloaded.MainImageURL)

	s.NoError(s.photos.ConvertPhoto(s.ctx, uuid.New()))
}

func (s *ServiceTestSuite) TestPhotoAnalytics() {
	item := s.createJersey(s.owner.ID, "Home")
	_, err := s.photos.CreatePhoto(s.ctx, s.owner.ID, item.ID, newUpload(s.T(), "a.png"))
	s.Require().NoError(err)
	_, err = s.photos.UploadUnattachedPhoto(s.ctx, s.owner.ID, newUpload(s.T(), "b.png"))
	s.Require().NoError(err)

	analytics, err := s.photos.GetPhotoAnalytics(s.ctx, &s.owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), analytics.TotalPhotos)
	s.Equal(int64(1), analytics.AttachedPhotos)
	s.Equal(int64(1), analytics.OrphanedPhotos)
	s.Require().Len(analytics.UploadsByMonth, 1)
	s.Equal(int64(2), analytics.UploadsByMonth[0].Count)
}

// Colors and sizes

func (s *ServiceTestSuite) TestColors() {
	created, err := s.colors.InitializeDefaultColors(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(models.DefaultColors), created)
	again, err := s.colors.InitializeDefaultColors(s.ctx)
	s.Require().NoError(err)
	s.Zero(again)

	custom, err := s.colors.CreateCustomColor(s.ctx, &CreateColorRequest{Name: "Teal", HexValue: "#0ab"})
	s.Require().NoError(err)
	s.True(custom.IsCustom)
	s.Equal("#00AABB", custom.HexValue)

	_, err = s.colors.CreateCustomColor(s.ctx, &CreateColorRequest{Name: "teal", HexValue: "#123456"})
	s.ErrorIs(err, ErrColorExists)
	_, err = s.colors.CreateCustomColor(s.ctx, &CreateColorRequest{Name: "Scarlet", HexValue: "#ff0000"})
	s.ErrorIs(err, ErrColorExists)
	_, err = s.colors.CreateCustomColor(s.ctx, &CreateColorRequest{Name: "Bad", HexValue: "red"})
	s.ErrorIs(err, ErrValidationFailed)

	found, err := s.colors.SearchColors(s.ctx, "BLU")
	s.Require().NoError(err)
	names := make([]string, 0, len(found))
	for _, c := range found {
		names = append(names, c.Name)
	}
	s.ElementsMatch([]string{"BLUE", "SKY_BLUE"}, names)

	s.createJersey(s.owner.ID, "Teal shirt", func(r *CreateItemRequest) { r.MainColorID = &custom.ID })
	s.ErrorIs(s.colors.DeleteColor(s.ctx, custom.ID), ErrColorInUse)

	popular, err := s.colors.GetPopularColors(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(popular, 1)
	s.Equal("Teal", popular[0].Name)

	stats, err := s.colors.GetColorStatistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(len(models.DefaultColors)+1), stats.TotalColors)
	s.Equal(int64(1), stats.CustomColors)
	s.Equal(int64(1), stats.UsedColors)
}

func (s *ServiceTestSuite) TestSizes() {
	_, err := s.sizes.InitializeDefaultSizes(s.ctx)
	s.Require().NoError(err)

	bottoms, err := s.sizes.GetSizesForItemType(s.ctx, models.ItemTypeShorts)
	s.Require().NoError(err)
	s.Len(bottoms, len(models.DefaultSizes[models.SizeCategoryBottoms]))

	_, err = s.sizes.GetSizesByCategory(s.ctx, "hats")
	s.ErrorIs(err, ErrValidationFailed)

	custom, err := s.sizes.CreateCustomSize(s.ctx, &CreateSizeRequest{Name: "XXXXL", Category: models.SizeCategoryTops})
	s.Require().NoError(err)
	s.True(custom.IsCustom)
	_, err = s.sizes.CreateCustomSize(s.ctx, &CreateSizeRequest{Name: "xxxxl", Category: models.SizeCategoryTops})
	s.ErrorIs(err, ErrSizeExists)
	_, err = s.sizes.CreateCustomSize(s.ctx, &CreateSizeRequest{Name: "XXXXL", Category: "hats"})
	s.ErrorIs(err, ErrValidationFailed)

	s.createJersey(s.owner.ID, "Big shirt", func(r *CreateItemRequest) { r.SizeID = &custom.ID })
	s.ErrorIs(s.sizes.DeleteSize(s.ctx, custom.ID), ErrSizeInUse)

	dist, err := s.sizes.GetSizeDistributionByCategory(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), dist[models.SizeCategoryTops])
	s.Equal(int64(0), dist[models.SizeCategoryBottoms])

	found, err := s.sizes.SearchSizes(s.ctx, "bottom")
	s.Require().NoError(err)
	s.Len(found, len(models.DefaultSizes[models.SizeCategoryBottoms]))
}

// Collection facade

func (s *ServiceTestSuite) TestJerseyScenario() {
	item, err := s.collection.CreateItemWithPhotos(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "2023 Home"},
		[]PhotoUpload{newUpload(s.T(), "front.png"), newUpload(s.T(), "back.png")})
	s.Require().NoError(err)

	items, err := s.items.GetUserItems(s.ctx, s.owner.ID, "")
	s.Require().NoError(err)
	s.Len(items, 1)

	photos, err := s.photos.GetPhotosForItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Require().Len(photos, 2)
	s.Equal([]int{0, 1}, s.orders(item.ID))

	s.Require().NoError(s.photos.DeletePhoto(s.ctx, s.owner.ID, photos[0].ID))
	s.Equal([]int{0}, s.orders(item.ID))
}

// failingPhotos fails the nth CreatePhoto call and delegates everything else.
type failingPhotos struct {
	PhotoService
	failOn int
	calls  int
}

func (f *failingPhotos) CreatePhoto(ctx context.Context, userID, itemID uuid.UUID, upload PhotoUpload) (*models.Photo, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, errors.New("storage exploded")
	}
	return f.PhotoService.CreatePhoto(ctx, userID, itemID, upload)
}

func (s *ServiceTestSuite) TestCreateItemWithPhotosRollsBackOnLastPhoto() {
	s.registry.Register(PhotoServiceName, &failingPhotos{PhotoService: NewPhotoService(s.deps), failOn: 3})
	collection, err := s.registry.CollectionService()
	s.Require().NoError(err)

	_, err = collection.CreateItemWithPhotos(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "Doomed"},
		[]PhotoUpload{newUpload(s.T(), "a.png"), newUpload(s.T(), "b.png"), newUpload(s.T(), "c.png")})
	s.Require().Error(err)

	s.Zero(s.count(&models.BaseItem{}))
	s.Zero(s.count(&models.Jersey{}))
	s.Zero(s.count(&models.Photo{}))
	s.Empty(s.recorder.OfType(jobs.TypeConvertPhoto))

	// The two objects already uploaded are scheduled for removal.
	var keys []string
	for _, job := range s.recorder.OfType(jobs.TypeDeleteObjects) {
		keys = append(keys, job.Keys...)
	}
	s.Len(keys, 2)
}

func (s *ServiceTestSuite) TestUpdateItemWithPhotosRemovesBeforeAdding() {
	item, err := s.collection.CreateItemWithPhotos(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "Home"},
		[]PhotoUpload{newUpload(s.T(), "a.png"), newUpload(s.T(), "b.png"), newUpload(s.T(), "c.png")})
	s.Require().NoError(err)
	photos, err := s.photos.GetPhotosForItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)

	_, err = s.collection.UpdateItemWithPhotos(s.ctx, s.owner.ID, item.ID, &UpdateItemRequest{}, nil, []uuid.UUID{photos[1].ID})
	s.Require().NoError(err)
	s.Equal([]int{0, 1}, s.orders(item.ID))

	_, err = s.collection.UpdateItemWithPhotos(s.ctx, s.owner.ID, item.ID, nil,
		[]PhotoUpload{newUpload(s.T(), "d.png")}, []uuid.UUID{photos[0].ID})
	s.Require().NoError(err)
	s.Equal([]int{0, 1}, s.orders(item.ID))
	s.Equal(int64(1), s.mainPhotos(item.ID))

	other := s.createJersey(s.owner.ID, "Away")
	_, err = s.collection.UpdateItemWithPhotos(s.ctx, s.owner.ID, other.ID, nil, nil, []uuid.UUID{photos[2].ID})
	s.ErrorIs(err, ErrPhotoNotOnItem)
	s.Equal(int64(2), s.count(&models.Photo{}))
}

func (s *ServiceTestSuite) TestCollectionReads() {
	init, err := s.collection.InitializeCollectionData(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(models.DefaultColors), init.Colors)

	s.createJersey(s.owner.ID, "Blue shirt")
	s.createJersey(s.other.ID, "Public shirt")

	dashboard, err := s.collection.GetCollectionDashboardData(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), dashboard.TotalItems)
	s.Equal(int64(2), dashboard.PublicItems)
	s.Len(dashboard.RecentItems, 1)
	s.Equal(int64(len(models.DefaultColors)), dashboard.ColorStats.TotalColors)

	results, err := s.collection.SearchCollection(s.ctx, &s.owner.ID, "blue", ItemSearchParams{})
	s.Require().NoError(err)
	s.Len(results.Items, 1)
	s.Len(results.Colors, 2)
	s.Equal(3, results.TotalResults)

	stats, err := s.collection.GetCollectionStatistics(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalItems)

	analytics, err := s.collection.GetCollectionAnalytics(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), analytics.Items.TotalItems)

	form, err := s.collection.GetFormData(s.ctx)
	s.Require().NoError(err)
	s.Len(form.Sizes[models.SizeCategoryTops], len(models.DefaultSizes[models.SizeCategoryTops]))
}

// Registry

type stubColors struct{ ColorService }

func (s *ServiceTestSuite) TestRegistrySubstitution() {
	items, err := s.registry.ItemService()
	s.Require().NoError(err)
	s.NotNil(items)

	stub := &stubColors{}
	s.registry.Register(ColorServiceName, stub)
	got, err := s.registry.ColorService()
	s.Require().NoError(err)
	s.Same(stub, got)

	s.registry.Register(SizeServiceName, "not a service")
	_, err = s.registry.SizeService()
	s.Error(err)

	s.registry.Unregister(ItemServiceName)
	_, err = s.registry.ItemService()
	s.ErrorIs(err, ErrServiceNotRegistered)
	_, err = s.registry.CollectionService()
	s.ErrorIs(err, ErrServiceNotRegistered)

	_, err = NewRegistry().Get("missing")
	s.ErrorIs(err, ErrServiceNotRegistered)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
