package domain

import "fmt"

// Product is a single catalog item. Immutable after catalog load.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Description string    `json:"description"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// Validate checks field ranges at catalog load time.
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product ID is required")
	}
	if p.Title == "" {
		return fmt.Errorf("product %s: title is required", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s: price must be non-negative, got %v", p.ID, p.Price)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("product %s: rating must be in [0,5], got %v", p.ID, p.Rating)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("product %s: review_count must be non-negative, got %d", p.ID, p.ReviewCount)
	}
	return nil
}

// SearchText returns the text matched against query keywords and
// embedded for similarity scoring.
func (p *Product) SearchText() string {
	if p.Description == "" {
		return p.Title
	}
	return p.Title + ". " + p.Description
}

// ProductSummary is the response projection of a Product.
type ProductSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// Summary projects the product into its response shape.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}
