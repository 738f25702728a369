package domain

import "fmt"

// Product is a single immutable catalog record.
type Product struct {
	ID          string  `json:"product_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url"`
}

// Validate checks the record against catalog invariants.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("product %s: title is required", p.ID)
	}
	if p.Category == "" {
		return fmt.Errorf("product %s: category is required", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: price must be >= 0, got %v", p.ID, p.Price)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("product %s: rating must be between 0 and 5, got %v", p.ID, p.Rating)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("product %s: review_count must be >= 0, got %d", p.ID, p.ReviewCount)
	}
	return nil
}
