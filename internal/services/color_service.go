// internal/services/color_service.go
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

type ColorService interface {
	GetAllColors(ctx context.Context) ([]models.Color, error)
	GetColor(ctx context.Context, id uuid.UUID) (*models.Color, error)
	SearchColors(ctx context.Context, query string) ([]models.Color, error)
	CreateCustomColor(ctx context.Context, req *CreateColorRequest) (*models.Color, error)
	UpdateColor(ctx context.Context, id uuid.UUID, req *UpdateColorRequest) (*models.Color, error)
	DeleteColor(ctx context.Context, id uuid.UUID) error
	InitializeDefaultColors(ctx context.Context) (int, error)
	GetColorStatistics(ctx context.Context) (*ColorStatistics, error)
	GetPopularColors(ctx context.Context, limit int) ([]repositories.ColorUsage, error)
	GetColorUsageAnalytics(ctx context.Context) ([]repositories.ColorUsage, error)
}

type CreateColorRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	HexValue string `json:"hex_value" validate:"required,hex_color"`
}

type UpdateColorRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	HexValue *string `json:"hex_value,omitempty" validate:"omitempty,hex_color"`
}

type ColorStatistics struct {
	TotalColors   int64 `json:"total_colors"`
	DefaultColors int64 `json:"default_colors"`
	CustomColors  int64 `json:"custom_colors"`
	UsedColors    int64 `json:"used_colors"`
	UnusedColors  int64 `json:"unused_colors"`
}

type colorService struct {
	db     *gorm.DB
	colors repositories.ColorRepository
}

func NewColorService(deps *Dependencies) ColorService {
	return &colorService{db: deps.DB, colors: deps.Colors}
}

func (s *colorService) GetAllColors(ctx context.Context) ([]models.Color, error) {
	return s.colors.List(ctx)
}

func (s *colorService) GetColor(ctx context.Context, id uuid.UUID) (*models.Color, error) {
	color, err := s.colors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if color == nil {
		return nil, ErrColorNotFound
	}
	return color, nil
}

// SearchColors matches names case-insensitively, and hex values exactly.
func (s *colorService) SearchColors(ctx context.Context, query string) ([]models.Color, error) {
	if strings.TrimSpace(query) == "" {
		return s.colors.List(ctx)
	}
	return s.colors.Search(ctx, query)
}

// normalizeHex expands #abc to #AABBCC.
func normalizeHex(hex string) string {
	hex = strings.ToUpper(strings.TrimSpace(hex))
	if len(hex) == 4 {
		return "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
	}
	return hex
}

// checkUnique rejects a name or hex value already taken by another color.
func (s *colorService) checkUnique(ctx context.Context, id *uuid.UUID, name, hex string) error {
	if name != "" {
		existing, err := s.colors.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil && (id == nil || existing.ID != *id) {
			return ErrColorExists
		}
	}
	if hex != "" {
		existing, err := s.colors.GetByHex(ctx, hex)
		if err != nil {
			return err
		}
		if existing != nil && (id == nil || existing.ID != *id) {
			return ErrColorExists
		}
	}
	return nil
}

func (s *colorService) CreateCustomColor(ctx context.Context, req *CreateColorRequest) (*models.Color, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	color := &models.Color{
		Name:     strings.TrimSpace(req.Name),
		HexValue: normalizeHex(req.HexValue),
		IsCustom: true,
	}

	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, nil, color.Name, color.HexValue); err != nil {
			return err
		}
		if err := s.colors.Create(ctx, color); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrColorExists
			}
			return fmt.Errorf("failed to create color: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"color": color.Name, "hex": color.HexValue}).Info("Custom color created")
	return color, nil
}

func (s *colorService) UpdateColor(ctx context.Context, id uuid.UUID, req *UpdateColorRequest) (*models.Color, error) {
	if req == nil {
		req = &UpdateColorRequest{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var color *models.Color
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		if color, err = s.GetColor(ctx, id); err != nil {
			return err
		}
		var name, hex string
		if req.Name != nil {
			name = strings.TrimSpace(*req.Name)
			color.Name = name
		}
		if req.HexValue != nil {
			hex = normalizeHex(*req.HexValue)
			color.HexValue = hex
		}
		if err := s.checkUnique(ctx, &id, name, hex); err != nil {
			return err
		}
		if err := s.colors.Update(ctx, color); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrColorExists
			}
			return fmt.Errorf("failed to update color: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return color, nil
}

// DeleteColor refuses colors still referenced by any item.
func (s *colorService) DeleteColor(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.GetColor(ctx, id); err != nil {
			return err
		}
		inUse, err := s.colors.CountItemsUsing(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return ErrColorInUse
		}
		return s.colors.Delete(ctx, id)
	})
}

// InitializeDefaultColors seeds the default palette and returns how many
// colors were added. Existing entries are left untouched.
func (s *colorService) InitializeDefaultColors(ctx context.Context) (int, error) {
	names := make([]string, 0, len(models.DefaultColors))
	for name := range models.DefaultColors {
		names = append(names, name)
	}
	sort.Strings(names)

	created := 0
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		for _, name := range names {
			existing, err := s.colors.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := s.colors.Create(ctx, &models.Color{Name: name, HexValue: models.DefaultColors[name]}); err != nil {
				return fmt.Errorf("failed to seed color %s: %w", name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		logrus.WithField("created", created).Info("Default colors initialized")
	}
	return created, nil
}

func (s *colorService) GetColorStatistics(ctx context.Context) (*ColorStatistics, error) {
	usage, err := s.colors.Usage(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ColorStatistics{TotalColors: int64(len(usage))}
	for _, u := range usage {
		if u.IsCustom {
			stats.CustomColors++
		} else {
			stats.DefaultColors++
		}
		if u.Total() > 0 {
			stats.UsedColors++
		}
	}
	stats.UnusedColors = stats.TotalColors - stats.UsedColors
	return stats, nil
}

// GetPopularColors returns the colors used by the most items, as main or
// secondary color. Unused colors are left out.
func (s *colorService) GetPopularColors(ctx context.Context, limit int) ([]repositories.ColorUsage, error) {
	usage, err := s.colors.Usage(ctx)
	if err != nil {
		return nil, err
	}
	popular := make([]repositories.ColorUsage, 0, len(usage))
	for _, u := range usage {
		if u.Total() > 0 {
			popular = append(popular, u)
		}
	}
	sort.SliceStable(popular, func(i, j int) bool {
		if popular[i].Total() != popular[j].Total() {
			return popular[i].Total() > popular[j].Total()
		}
		return popular[i].Name < popular[j].Name
	})
	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func (s *colorService) GetColorUsageAnalytics(ctx context.Context) ([]repositories.ColorUsage, error) {
	return s.colors.Usage(ctx)
}
