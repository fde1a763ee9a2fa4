package storefront

// Review is the canonical review representation
type Review struct {
	ID      string  `json:"id"`
	Rating  float64 `json:"rating"`
	Title   string  `json:"title"`
	Comment string  `json:"comment"`
	Date    string  `json:"date"`
	Reply   string  `json:"reply,omitempty"`
}

// HasValidRating reports whether the rating falls in the accepted 1..5 range
func (r *Review) HasValidRating() bool {
	return r.Rating >= minRating && r.Rating <= maxRating
}

// ReviewStats summarizes a set of reviews for display
type ReviewStats struct {
	AverageRating   float64     `json:"average_rating"`
	TotalReviews    int         `json:"total_reviews"`
	RatingBreakdown map[int]int `json:"rating_breakdown"`
}

// CartLineItem is a normalized cart line derived from possibly-malformed
// stored or external records
type CartLineItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}
