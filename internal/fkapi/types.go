package fkapi

import (
	"encoding/json"
	"strconv"
)

// FlexID accepts both numeric and string identifiers in API payloads.
type FlexID int

func (id *FlexID) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*id = FlexID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*id = FlexID(n)
	return nil
}

type Club struct {
	ID      FlexID `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug,omitempty"`
	Logo    string `json:"logo,omitempty"`
	Country string `json:"country,omitempty"`
}

type Season struct {
	ID   FlexID `json:"id"`
	Year string `json:"year"`
}

type Brand struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type Competition struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type KitColor struct {
	Name string `json:"name"`
	Hex  string `json:"color,omitempty"`
}

type KitType struct {
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	IsGoalkeeper bool   `json:"is_goalkeeper,omitempty"`
}

// UnmarshalJSON accepts the bare-string form some endpoints return.
func (t *KitType) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*t = KitType{Name: name}
		return nil
	}
	type plain KitType
	return json.Unmarshal(b, (*plain)(t))
}

// KitSummary is one row of a kit listing or search.
type KitSummary struct {
	ID         FlexID `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
	MainImgURL string `json:"main_img_url,omitempty"`
	Team       *Club  `json:"team,omitempty"`
	Season     string `json:"season,omitempty"`
}

// Kit is the full kit record from /kit-json/{id}.
type Kit struct {
	ID           FlexID        `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug,omitempty"`
	Description  string        `json:"description,omitempty"`
	MainImgURL   string        `json:"main_img_url,omitempty"`
	Type         *KitType      `json:"type,omitempty"`
	Team         *Club         `json:"team,omitempty"`
	Season       *Season       `json:"season,omitempty"`
	Brand        *Brand        `json:"brand,omitempty"`
	Competitions []Competition `json:"competition,omitempty"`
	Colors       []KitColor    `json:"colors,omitempty"`
}
