// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Product is a catalog item as stored locally and returned by the search
// endpoint. The wire name for ImageURLs is "imageUrls".
type Product struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Price     float64  `json:"price" yaml:"price"`
	Category  string   `json:"category" yaml:"category"`
	Tags      []string `json:"tags" yaml:"tags"`
	ImageURLs []string `json:"imageUrls" yaml:"image_urls"`
}

// Recommendation is one ranked item from the recommendation endpoint. It
// carries no product detail. Explanation is optional free text some
// backends attach.
type Recommendation struct {
	ItemID      string  `json:"item_id" yaml:"item_id"`
	Score       float64 `json:"score" yaml:"score"`
	Explanation string  `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Payload is the raw result of one gateway fetch. Exactly one of the two
// lists is meaningful, depending on the mode that produced it.
type Payload struct {
	Products        []Product        `json:"products,omitempty" yaml:"products,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// Len returns the number of items in the payload.
func (p Payload) Len() int {
	return len(p.Products) + len(p.Recommendations)
}

// DisplayProduct is the unified on-screen representation of a search hit or
// a recommendation. Values are built by the projector and not modified
// afterwards.
type DisplayProduct struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Price       float64  `json:"price" yaml:"price"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags" yaml:"tags"`
	ImageURLs   []string `json:"imageUrls" yaml:"image_urls"`
	Score       *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}
