package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestItemTypeValid(t *testing.T) {
	for _, it := range ItemTypes {
		assert.True(t, it.Valid(), it)
	}
	assert.False(t, ItemType("pants").Valid())
	assert.False(t, ItemType("").Valid())
}

func TestSizeCategoryFor(t *testing.T) {
	assert.Equal(t, SizeCategoryTops, SizeCategoryFor(ItemTypeJersey))
	assert.Equal(t, SizeCategoryBottoms, SizeCategoryFor(ItemTypeShorts))
	assert.Equal(t, SizeCategoryTops, SizeCategoryFor(ItemTypeOuterwear))
	assert.Equal(t, SizeCategoryTops, SizeCategoryFor(ItemTypeTracksuit))
	assert.Equal(t, SizeCategoryOther, SizeCategoryFor("scarf"))
}

func TestBaseItemVisibleTo(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	item := &BaseItem{UserID: owner, IsPrivate: true}
	assert.True(t, item.VisibleTo(&owner))
	assert.False(t, item.VisibleTo(&other))
	assert.False(t, item.VisibleTo(nil))

	item.IsPrivate = false
	item.IsDraft = true
	assert.False(t, item.VisibleTo(&other))

	item.IsDraft = false
	assert.True(t, item.VisibleTo(&other))
	assert.True(t, item.VisibleTo(nil))
}

func TestBaseItemSubtype(t *testing.T) {
	item := &BaseItem{}
	assert.Nil(t, item.Subtype())

	item.Outerwear = &Outerwear{Type: OuterwearHoodie}
	assert.Equal(t, ItemTypeOuterwear, item.Subtype().Kind())
}

func TestPhotoKeysAndDisplayURL(t *testing.T) {
	p := &Photo{ImageKey: "a.jpg", ImageURL: "/media/a.jpg"}
	assert.Equal(t, []string{"a.jpg"}, p.Keys())
	assert.Equal(t, "/media/a.jpg", p.DisplayURL())

	p.OptimizedKey = "a.opt.jpg"
	p.OptimizedURL = "/media/a.opt.jpg"
	assert.Equal(t, []string{"a.jpg", "a.opt.jpg"}, p.Keys())
	assert.Equal(t, "/media/a.opt.jpg", p.DisplayURL())
}
