// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"

	// Validation
	KeyValidationInvalid    = "validation.invalid"
	KeyValidationInvalidID  = "validation.invalid_id"
	KeyValidationFailed     = "validation.failed"
	KeyPhotoLimit           = "photo.limit_reached"
	KeyPhotoUnsupported     = "photo.unsupported_type"
	KeyPhotoTooLarge        = "photo.too_large"
	KeyPhotoMissingFile     = "photo.missing_file"
	KeyKitSearchTooShort    = "kit.search_too_short"
	KeyRateLimitExceeded    = "rate_limit.exceeded"
	KeyOperationNotAllowed  = "operation.not_allowed"
	KeyInternalError        = "error.internal"
	KeyExternalUnavailable  = "error.external_unavailable"
	KeyConflict             = "error.conflict"
	KeyResourceNotFound     = "error.not_found"

	// Items
	KeyItemCreated   = "item.created"
	KeyItemUpdated   = "item.updated"
	KeyItemDeleted   = "item.deleted"
	KeyItemPublished = "item.published"
	KeyItemNotFound  = "item.not_found"

	// Photos
	KeyPhotoUploaded  = "photo.uploaded"
	KeyPhotoDeleted   = "photo.deleted"
	KeyPhotosOrdered  = "photo.reordered"
	KeyPhotoNotFound  = "photo.not_found"
	KeyPhotoNotOnItem = "photo.not_on_item"

	// Colors and sizes
	KeyColorCreated  = "color.created"
	KeyColorNotFound = "color.not_found"
	KeyColorExists   = "color.exists"
	KeyColorInUse    = "color.in_use"
	KeySizeCreated   = "size.created"
	KeySizeNotFound  = "size.not_found"
	KeySizeExists    = "size.exists"
	KeySizeInUse     = "size.in_use"

	// Users
	KeyUserNotFound = "user.not_found"

	// Collection
	KeyCollectionInitialized = "collection.initialized"
)
