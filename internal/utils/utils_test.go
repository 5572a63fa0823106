package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colorInput struct {
	Name     string `validate:"required,max=100"`
	HexValue string `validate:"required,hex_color"`
}

func TestHexColorValidation(t *testing.T) {
	assert.NoError(t, ValidateStruct(colorInput{Name: "Claret", HexValue: "#7F1734"}))
	assert.NoError(t, ValidateStruct(colorInput{Name: "Short", HexValue: "#fff"}))

	err := ValidateStruct(colorInput{Name: "Bad", HexValue: "7F1734"})
	require.Error(t, err)
	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "hexvalue", errs[0].Field)
	assert.Equal(t, "hex_color", errs[0].Tag)

	assert.False(t, IsHexColor("#12345"))
	assert.False(t, IsHexColor("#GGGGGG"))
}

func TestItemTypeAndSizeCategoryValidation(t *testing.T) {
	type input struct {
		ItemType string `validate:"required,item_type"`
		Category string `validate:"required,size_category"`
	}
	assert.NoError(t, ValidateStruct(input{ItemType: "jersey", Category: "Tops"}))
	assert.Error(t, ValidateStruct(input{ItemType: "pants", Category: "tops"}))
	assert.Error(t, ValidateStruct(input{ItemType: "shorts", Category: "shoes"}))
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]int{1, 2}, 45, PaginationParams{Page: 2, Limit: 20})
	assert.Equal(t, 3, result.TotalPages)

	result = CreatePaginationResult(nil, 5, PaginationParams{})
	assert.Equal(t, 1, result.TotalPages)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateJWT(id, "collector", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "collector", claims.Username)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fc-barcelona", Slugify("  FC Barcelona "))
	assert.Equal(t, "uefa-champions-league", Slugify("UEFA Champions_League"))
	assert.Equal(t, "atltico-madrid", Slugify("Atlético -- Madrid"))
	assert.Empty(t, Slugify("!!!"))
}
