// internal/models/reference.go
package models

import "github.com/google/uuid"

type Club struct {
	BaseModel
	FKAID   *int   `json:"fka_id,omitempty" gorm:"uniqueIndex"`
	Name    string `json:"name" gorm:"size:100;not null;index"`
	Slug    string `json:"slug" gorm:"size:150;index"`
	Country string `json:"country" gorm:"size:2"`
	Logo    string `json:"logo" gorm:"size:500"`
}

type Season struct {
	BaseModel
	Year       string `json:"year" gorm:"size:9;uniqueIndex;not null"`
	FirstYear  string `json:"first_year" gorm:"size:4"`
	SecondYear string `json:"second_year" gorm:"size:4"`
}

type Competition struct {
	BaseModel
	FKAID *int   `json:"fka_id,omitempty" gorm:"uniqueIndex"`
	Name  string `json:"name" gorm:"size:100;not null;index"`
	Slug  string `json:"slug" gorm:"size:150"`
	Logo  string `json:"logo" gorm:"size:500"`
}

type Brand struct {
	BaseModel
	FKAID *int   `json:"fka_id,omitempty" gorm:"uniqueIndex"`
	Name  string `json:"name" gorm:"size:100;not null;index"`
	Slug  string `json:"slug" gorm:"size:150"`
	Logo  string `json:"logo" gorm:"size:500"`
}

type KitType struct {
	BaseModel
	Name         string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Category     string `json:"category" gorm:"size:20"`
	IsGoalkeeper bool   `json:"is_goalkeeper"`
}

type Kit struct {
	BaseModel
	FKAID        *int       `json:"fka_id,omitempty" gorm:"uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Slug         string     `json:"slug" gorm:"size:250"`
	ClubID       *uuid.UUID `json:"club_id,omitempty" gorm:"type:uuid"`
	SeasonID     *uuid.UUID `json:"season_id,omitempty" gorm:"type:uuid"`
	BrandID      *uuid.UUID `json:"brand_id,omitempty" gorm:"type:uuid"`
	KitTypeID    *uuid.UUID `json:"kit_type_id,omitempty" gorm:"type:uuid"`
	MainImageURL string     `json:"main_img_url" gorm:"size:500"`

	Club    *Club    `json:"club,omitempty" gorm:"foreignKey:ClubID"`
	Season  *Season  `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
	Brand   *Brand   `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	KitType *KitType `json:"kit_type,omitempty" gorm:"foreignKey:KitTypeID"`
}
