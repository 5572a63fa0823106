package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/footycollect/footycollect-api/internal/fkapi"
	"github.com/footycollect/footycollect-api/internal/models"
)

type fakeKits struct {
	kits map[int]*fkapi.Kit
	err  error
}

func (f *fakeKits) GetKit(_ context.Context, id int) (*fkapi.Kit, error) {
	if f.err != nil {
		return nil, f.err
	}
	kit, ok := f.kits[id]
	if !ok {
		return nil, fkapi.ErrUnavailable
	}
	return kit, nil
}

func (f *fakeKits) SearchKits(_ context.Context, keyword string) ([]fkapi.KitSummary, error) {
	var out []fkapi.KitSummary
	for _, k := range f.kits {
		if strings.Contains(strings.ToLower(k.Name), strings.ToLower(keyword)) {
			out = append(out, fkapi.KitSummary{ID: k.ID, Name: k.Name})
		}
	}
	return out, f.err
}

func (f *fakeKits) SearchClubs(context.Context, string) ([]fkapi.Club, error) {
	return nil, f.err
}

func (f *fakeKits) ClubSeasons(context.Context, int) ([]fkapi.Season, error) {
	return nil, f.err
}

func (f *fakeKits) ClubKits(context.Context, int, int) ([]fkapi.KitSummary, error) {
	return nil, f.err
}

func barcelonaHome() *fkapi.Kit {
	return &fkapi.Kit{
		ID:          4242,
		Name:        "FC Barcelona 2023-24 Home",
		Slug:        "fc-barcelona-2023-24-home",
		Description: "Blaugrana stripes.",
		Type:        &fkapi.KitType{Name: "Home", Category: "match"},
		Team:        &fkapi.Club{ID: 7, Name: "FC Barcelona", Slug: "fc-barcelona", Country: "es"},
		Season:      &fkapi.Season{ID: 3, Year: "2023-24"},
		Brand:       &fkapi.Brand{ID: 1, Name: "Nike"},
		Competitions: []fkapi.Competition{
			{ID: 10, Name: "La Liga"},
			{ID: 11, Name: "UEFA Champions League"},
		},
		Colors: []fkapi.KitColor{
			{Name: "Blue", Hex: "#0000FF"},
			{Name: "Garnet", Hex: "#A50044"},
		},
	}
}

func (s *ServiceTestSuite) fkapiService(kits fkapi.KitSource) ItemFKAPIService {
	s.deps.KitSource = kits
	return NewItemFKAPIService(s.deps, NewItemService(s.deps), NewPhotoService(s.deps))
}

func (s *ServiceTestSuite) TestProcessItemCreationMergesKit() {
	_, err := s.colors.InitializeDefaultColors(s.ctx)
	s.Require().NoError(err)
	svc := s.fkapiService(&fakeKits{kits: map[int]*fkapi.Kit{4242: barcelonaHome()}})

	photo, err := s.photos.UploadUnattachedPhoto(s.ctx, s.owner.ID, newUpload(s.T(), "front.png"))
	s.Require().NoError(err)

	item, err := svc.ProcessItemCreation(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "placeholder", Description: "Bought in 2023.", IsDraft: true},
		4242, []uuid.UUID{photo.ID})
	s.Require().NoError(err)

	s.Equal("FC Barcelona 2023-24 Home", item.Name)
	s.False(item.IsDraft)
	s.Contains(item.Description, "[Kit ID: 4242]")
	s.Contains(item.Description, "Blaugrana stripes.")
	s.Require().NotNil(item.Club)
	s.Equal("FC Barcelona", item.Club.Name)
	s.Equal("ES", item.Club.Country)
	s.Require().NotNil(item.Season)
	s.Equal("2023-24", item.Season.Year)
	s.Require().NotNil(item.Brand)
	s.Equal("nike", item.Brand.Slug)
	s.Require().NotNil(item.KitType)
	s.Equal("Home", item.KitType.Name)
	s.Len(item.Competitions, 2)

	// "Blue" matches the seeded BLUE; "Garnet" is new and becomes custom.
	s.Require().NotNil(item.MainColor)
	s.Equal("BLUE", item.MainColor.Name)
	s.Require().Len(item.SecondaryColors, 1)
	s.Equal("Garnet", item.SecondaryColors[0].Name)
	s.True(item.SecondaryColors[0].IsCustom)

	s.Require().NotNil(item.Jersey)
	s.NotNil(item.Jersey.KitID)

	photos, err := s.photos.GetPhotosForItem(s.ctx, &s.owner.ID, item.ID)
	s.Require().NoError(err)
	s.Require().Len(photos, 1)
	s.Equal(photo.ID, photos[0].ID)
	s.True(photos[0].IsMain)
}

func (s *ServiceTestSuite) TestProcessItemCreationKeepsRequestValues() {
	svc := s.fkapiService(&fakeKits{kits: map[int]*fkapi.Kit{4242: barcelonaHome()}})
	adidas, err := s.deps.References.GetOrCreateBrand(s.ctx, &models.Brand{Name: "Adidas", Slug: "adidas"})
	s.Require().NoError(err)

	item, err := svc.ProcessItemCreation(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "x", BrandID: &adidas.ID}, 4242, nil)
	s.Require().NoError(err)
	s.Equal("Adidas", item.Brand.Name)

	// A second item from the same kit reuses the reference rows.
	_, err = svc.ProcessItemCreation(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "x"}, 4242, nil)
	s.Require().NoError(err)
	s.Equal(int64(1), s.count(&models.Club{}))
	s.Equal(int64(1), s.count(&models.Kit{}))
}

func (s *ServiceTestSuite) TestProcessItemCreationWithoutArchive() {
	svc := s.fkapiService(&fakeKits{err: errors.New("connection refused")})

	item, err := svc.ProcessItemCreation(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeShorts, Name: "Match shorts"}, 99, nil)
	s.Require().NoError(err)
	s.Equal("Match shorts", item.Name)
	s.Equal("\n\n[Kit ID: 99]", item.Description)
	s.Nil(item.Club)
}

func (s *ServiceTestSuite) TestProcessItemCreationRollsBackOnBadPhoto() {
	svc := s.fkapiService(&fakeKits{kits: map[int]*fkapi.Kit{4242: barcelonaHome()}})

	_, err := svc.ProcessItemCreation(s.ctx, s.owner.ID,
		&CreateItemRequest{ItemType: models.ItemTypeJersey, Name: "x"}, 4242, []uuid.UUID{uuid.New()})
	s.Require().Error(err)
	s.Zero(s.count(&models.BaseItem{}))
	s.Zero(s.count(&models.Club{}))
}

func (s *ServiceTestSuite) TestKitSearch() {
	svc := s.fkapiService(&fakeKits{kits: map[int]*fkapi.Kit{4242: barcelonaHome()}})

	_, err := svc.SearchKits(s.ctx, "b")
	s.ErrorIs(err, ErrValidationFailed)

	kits, err := svc.SearchKits(s.ctx, "barcelona")
	s.Require().NoError(err)
	s.Len(kits, 1)

	_, err = s.fkapiService(nil).SearchClubs(s.ctx, "barca")
	s.ErrorIs(err, fkapi.ErrUnavailable)
}
