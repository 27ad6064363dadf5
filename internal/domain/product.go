package domain

import "time"

// Product carries the trilingual storefront fields. The language picked for
// display is a client concern; the backend always ships all three.
type Product struct {
	ID            string    `json:"id"`
	NameFR        string    `json:"name_fr"`
	NameTR        string    `json:"name_tr"`
	NameEN        string    `json:"name_en"`
	DescriptionFR string    `json:"description_fr"`
	DescriptionTR string    `json:"description_tr"`
	DescriptionEN string    `json:"description_en"`
	Price         float64   `json:"price"`
	CategoryID    string    `json:"category_id"`
	Images        []string  `json:"images"`
	Stock         int       `json:"stock"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `json:"id"`
	NameFR    string    `json:"name_fr"`
	NameTR    string    `json:"name_tr"`
	NameEN    string    `json:"name_en"`
	Slug      string    `json:"slug"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
