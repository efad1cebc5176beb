package models

import "time"

// ItemCategory enumerates the fixed category set for reported items.
type ItemCategory string

const (
	CategoryElectronics ItemCategory = "electronics"
	CategoryClothing    ItemCategory = "clothing"
	CategoryAccessories ItemCategory = "accessories"
	CategoryBooks       ItemCategory = "books"
	CategorySports      ItemCategory = "sports"
	CategoryKeys        ItemCategory = "keys"
	CategoryOther       ItemCategory = "other"
)

// ItemCategories lists every valid category.
var ItemCategories = []ItemCategory{
	CategoryElectronics,
	CategoryClothing,
	CategoryAccessories,
	CategoryBooks,
	CategorySports,
	CategoryKeys,
	CategoryOther,
}

// ValidItemCategory reports whether the category belongs to the fixed set.
func ValidItemCategory(c ItemCategory) bool {
	for _, known := range ItemCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemStatus tracks an item through the claim lifecycle.
type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemClaimed   ItemStatus = "claimed"
	ItemReturned  ItemStatus = "returned"
)

// Item describes a found physical object awaiting claim.
type Item struct {
	ID            string       `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	Category      ItemCategory `db:"category" json:"category"`
	Description   string       `db:"description" json:"description"`
	LocationFound string       `db:"location_found" json:"location_found"`
	DateFound     time.Time    `db:"date_found" json:"date_found"`
	PhotoPath     *string      `db:"photo_path" json:"-"`
	PhotoMime     *string      `db:"photo_mime" json:"photo_mime,omitempty"`
	PhotoURL      string       `db:"-" json:"photo_url,omitempty"`
	Status        ItemStatus   `db:"status" json:"status"`
	SubmittedBy   string       `db:"submitted_by" json:"submitted_by"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// ItemFilter captures filtering criteria for listing items.
type ItemFilter struct {
	Status      *ItemStatus
	Category    *ItemCategory
	SubmittedBy string
	Page        int
	PageSize    int
}
