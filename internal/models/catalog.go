// internal/models/catalog.go
package models

// Color is a shared reference entry; custom colors are user-defined additions
// to the seeded palette.
type Color struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	HexValue string `json:"hex_value" gorm:"size:7;not null;default:'#FFFFFF'"`
	IsCustom bool   `json:"is_custom" gorm:"default:false"`
}

type Size struct {
	BaseModel
	Name     string       `json:"name" gorm:"size:20;not null;index"`
	Category SizeCategory `json:"category" gorm:"type:varchar(10);not null;index"`
	IsCustom bool         `json:"is_custom" gorm:"default:false"`
}

// DefaultColors is the seeded palette, keyed by name.
var DefaultColors = map[string]string{
	"WHITE":     "#FFFFFF",
	"RED":       "#FF0000",
	"BLUE":      "#0000FF",
	"BLACK":     "#000000",
	"YELLOW":    "#FFFF00",
	"GREEN":     "#008000",
	"SKY_BLUE":  "#87CEEB",
	"NAVY":      "#000080",
	"ORANGE":    "#FFA500",
	"GRAY":      "#808080",
	"CLARET":    "#7F1734",
	"PURPLE":    "#800080",
	"PINK":      "#FFC0CB",
	"BROWN":     "#964B00",
	"GOLD":      "#BFAB40",
	"SILVER":    "#C0C0C0",
	"OFF_WHITE": "#F5F5F5",
}

// DefaultSizes is the seeded size table per category.
var DefaultSizes = map[SizeCategory][]string{
	SizeCategoryTops:    {"XS", "S", "M", "L", "XL", "XXL", "XXXL"},
	SizeCategoryBottoms: {"28", "30", "32", "34", "36", "38", "40", "42", "44", "46"},
	SizeCategoryOther:   {"One Size", "Small", "Medium", "Large", "Extra Large"},
}

// SizeCategoryFor maps an item type to the size category it is sold in.
func SizeCategoryFor(t ItemType) SizeCategory {
	switch t {
	case ItemTypeShorts:
		return SizeCategoryBottoms
	case ItemTypeJersey, ItemTypeOuterwear, ItemTypeTracksuit:
		return SizeCategoryTops
	default:
		return SizeCategoryOther
	}
}
