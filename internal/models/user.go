// internal/models/user.go
package models

// User is the collection owner. Credentials live with the identity provider;
// only the reference data the catalog needs is stored here.
type User struct {
	BaseModel
	Username string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email    string `json:"email" gorm:"size:255"`

	Items []BaseItem `json:"items,omitempty" gorm:"foreignKey:UserID"`
}
