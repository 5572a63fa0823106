// internal/models/item.go
package models

import (
	"github.com/google/uuid"
)

// BaseItem holds the fields shared by every collectible. Exactly one of the
// subtype relations is populated and it always matches ItemType.
type BaseItem struct {
	BaseModel
	ItemType          ItemType          `json:"item_type" gorm:"type:varchar(20);not null;index"`
	Name              string            `json:"name" gorm:"size:200;not null"`
	Description       string            `json:"description" gorm:"type:text"`
	UserID            uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	BrandID           *uuid.UUID        `json:"brand_id,omitempty" gorm:"type:uuid;index"`
	ClubID            *uuid.UUID        `json:"club_id,omitempty" gorm:"type:uuid;index"`
	SeasonID          *uuid.UUID        `json:"season_id,omitempty" gorm:"type:uuid;index"`
	KitTypeID         *uuid.UUID        `json:"kit_type_id,omitempty" gorm:"type:uuid"`
	MainColorID       *uuid.UUID        `json:"main_color_id,omitempty" gorm:"type:uuid;index"`
	SizeID            *uuid.UUID        `json:"size_id,omitempty" gorm:"type:uuid;index"`
	Condition         int               `json:"condition" gorm:"column:condition_score;default:10"`
	DetailedCondition DetailedCondition `json:"detailed_condition" gorm:"type:varchar(20);default:'BNWT'"`
	Design            Design            `json:"design" gorm:"type:varchar(20);default:'PLAIN'"`
	Country           string            `json:"country" gorm:"size:2"`
	IsReplica         bool              `json:"is_replica" gorm:"default:false"`
	IsPrivate         bool              `json:"is_private" gorm:"default:false;index"`
	IsDraft           bool              `json:"is_draft" gorm:"index"`
	MainImageURL      string            `json:"main_img_url" gorm:"size:500"`

	// Relationships
	User            *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Brand           *Brand        `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Club            *Club         `json:"club,omitempty" gorm:"foreignKey:ClubID"`
	Season          *Season       `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
	KitType         *KitType      `json:"kit_type,omitempty" gorm:"foreignKey:KitTypeID"`
	MainColor       *Color        `json:"main_color,omitempty" gorm:"foreignKey:MainColorID"`
	Size            *Size         `json:"size,omitempty" gorm:"foreignKey:SizeID"`
	Competitions    []Competition `json:"competitions,omitempty" gorm:"many2many:base_item_competitions;constraint:OnDelete:CASCADE"`
	SecondaryColors []Color       `json:"secondary_colors,omitempty" gorm:"many2many:base_item_secondary_colors;constraint:OnDelete:CASCADE"`

	// Subtypes
	Jersey    *Jersey    `json:"jersey,omitempty" gorm:"foreignKey:BaseItemID;constraint:OnDelete:CASCADE"`
	Shorts    *Shorts    `json:"shorts,omitempty" gorm:"foreignKey:BaseItemID;constraint:OnDelete:CASCADE"`
	Outerwear *Outerwear `json:"outerwear,omitempty" gorm:"foreignKey:BaseItemID;constraint:OnDelete:CASCADE"`
	Tracksuit *Tracksuit `json:"tracksuit,omitempty" gorm:"foreignKey:BaseItemID;constraint:OnDelete:CASCADE"`
}

// VisibleTo reports whether viewer may see the item. A nil viewer is anonymous.
func (b *BaseItem) VisibleTo(viewer *uuid.UUID) bool {
	if viewer != nil && *viewer == b.UserID {
		return true
	}
	return !b.IsPrivate && !b.IsDraft
}

// Subtype returns the populated subtype row, or nil when none is loaded.
func (b *BaseItem) Subtype() Subtype {
	switch {
	case b.Jersey != nil:
		return b.Jersey
	case b.Shorts != nil:
		return b.Shorts
	case b.Outerwear != nil:
		return b.Outerwear
	case b.Tracksuit != nil:
		return b.Tracksuit
	}
	return nil
}

// Subtype is implemented by every kind-specific table.
type Subtype interface {
	Kind() ItemType
	SetBaseItemID(id uuid.UUID)
}

type Jersey struct {
	BaseItemID    uuid.UUID  `json:"base_item_id" gorm:"type:uuid;primaryKey"`
	KitID         *uuid.UUID `json:"kit_id,omitempty" gorm:"type:uuid"`
	IsFanVersion  bool       `json:"is_fan_version"`
	IsSigned      bool       `json:"is_signed" gorm:"default:false"`
	HasNameset    bool       `json:"has_nameset" gorm:"default:false"`
	PlayerName    string     `json:"player_name" gorm:"size:100"`
	Number        *int       `json:"number,omitempty"`
	IsShortSleeve bool       `json:"is_short_sleeve"`

	Kit *Kit `json:"kit,omitempty" gorm:"foreignKey:KitID"`
}

type Shorts struct {
	BaseItemID   uuid.UUID `json:"base_item_id" gorm:"type:uuid;primaryKey"`
	Number       *int      `json:"number,omitempty"`
	IsFanVersion bool      `json:"is_fan_version"`
}

type Outerwear struct {
	BaseItemID uuid.UUID     `json:"base_item_id" gorm:"type:uuid;primaryKey"`
	Type       OuterwearType `json:"type" gorm:"type:varchar(20);not null"`
}

type Tracksuit struct {
	BaseItemID uuid.UUID `json:"base_item_id" gorm:"type:uuid;primaryKey"`
}

func (Shorts) TableName() string { return "shorts" }

func (*Jersey) Kind() ItemType    { return ItemTypeJersey }
func (*Shorts) Kind() ItemType    { return ItemTypeShorts }
func (*Outerwear) Kind() ItemType { return ItemTypeOuterwear }
func (*Tracksuit) Kind() ItemType { return ItemTypeTracksuit }

func (j *Jersey) SetBaseItemID(id uuid.UUID)    { j.BaseItemID = id }
func (s *Shorts) SetBaseItemID(id uuid.UUID)    { s.BaseItemID = id }
func (o *Outerwear) SetBaseItemID(id uuid.UUID) { o.BaseItemID = id }
func (t *Tracksuit) SetBaseItemID(id uuid.UUID) { t.BaseItemID = id }
