// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

var itemTypes = map[string]bool{"jersey": true, "shorts": true, "outerwear": true, "tracksuit": true}

var sizeCategories = map[string]bool{"tops": true, "bottoms": true, "other": true}

func init() {
	validate = validator.New()
	validate.RegisterValidation("hex_color", validateHexColor)
	validate.RegisterValidation("item_type", validateItemType)
	validate.RegisterValidation("size_category", validateSizeCategory)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsHexColor reports whether value is a #RGB or #RRGGBB color.
func IsHexColor(value string) bool {
	return hexColorPattern.MatchString(value)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return IsHexColor(fl.Field().String())
}

func validateItemType(fl validator.FieldLevel) bool {
	return itemTypes[fl.Field().String()]
}

func validateSizeCategory(fl validator.FieldLevel) bool {
	return sizeCategories[strings.ToLower(fl.Field().String())]
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "hex_color":
		return "Hex value must be in format #RRGGBB or #RGB"
	case "item_type":
		return "Item type must be one of: jersey, shorts, outerwear, tracksuit"
	case "size_category":
		return "Category must be one of: tops, bottoms, other"
	default:
		return e.Field() + " is invalid"
	}
}
