// internal/models/all.go
package models

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Club{},
		&Season{},
		&Competition{},
		&Brand{},
		&KitType{},
		&Kit{},
		&Color{},
		&Size{},
		&BaseItem{},
		&Jersey{},
		&Shorts{},
		&Outerwear{},
		&Tracksuit{},
		&Photo{},
	}
}
