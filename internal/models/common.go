// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key on the client so the same schema
// works on postgres and sqlite.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type ItemType string

const (
	ItemTypeJersey    ItemType = "jersey"
	ItemTypeShorts    ItemType = "shorts"
	ItemTypeOuterwear ItemType = "outerwear"
	ItemTypeTracksuit ItemType = "tracksuit"
)

// ItemTypes lists every subtype, in display order.
var ItemTypes = []ItemType{ItemTypeJersey, ItemTypeShorts, ItemTypeOuterwear, ItemTypeTracksuit}

func (t ItemType) Valid() bool {
	for _, it := range ItemTypes {
		if it == t {
			return true
		}
	}
	return false
}

type DetailedCondition string

const (
	ConditionBNWT      DetailedCondition = "BNWT"
	ConditionBNWOT     DetailedCondition = "BNWOT"
	ConditionExcellent DetailedCondition = "EXCELLENT"
	ConditionVeryGood  DetailedCondition = "VERY_GOOD"
	ConditionGood      DetailedCondition = "GOOD"
	ConditionFair      DetailedCondition = "FAIR"
	ConditionPoor      DetailedCondition = "POOR"
)

type Design string

const (
	DesignPlain              Design = "PLAIN"
	DesignStripes            Design = "STRIPES"
	DesignGraphic            Design = "GRAPHIC"
	DesignChestBand          Design = "CHEST_BAND"
	DesignContrastingSleeves Design = "CONTRASTING_SLEEVES"
	DesignPinstripes         Design = "PINSTRIPES"
	DesignHoops              Design = "HOOPS"
	DesignSingleStripe       Design = "SINGLE_STRIPE"
	DesignHalfAndHalf        Design = "HALF_AND_HALF"
	DesignSash               Design = "SASH"
	DesignChevron            Design = "CHEVRON"
	DesignCheckers           Design = "CHECKERS"
	DesignGradient           Design = "GRADIENT"
	DesignDiagonal           Design = "DIAGONAL"
)

type OuterwearType string

const (
	OuterwearHoodie      OuterwearType = "hoodie"
	OuterwearJacket      OuterwearType = "jacket"
	OuterwearWindbreaker OuterwearType = "windbreaker"
	OuterwearCrewneck    OuterwearType = "crewneck"
)

type SizeCategory string

const (
	SizeCategoryTops    SizeCategory = "tops"
	SizeCategoryBottoms SizeCategory = "bottoms"
	SizeCategoryOther   SizeCategory = "other"
)

var SizeCategories = []SizeCategory{SizeCategoryTops, SizeCategoryBottoms, SizeCategoryOther}

// OwnerKind is the closed set of entities a photo can be attached to.
type OwnerKind string

const (
	OwnerKindBaseItem OwnerKind = "base_item"
)
