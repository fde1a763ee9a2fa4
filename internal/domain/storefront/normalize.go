package storefront

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minRating = 1
	maxRating = 5

	placeholderTitle   = "No title provided"
	placeholderComment = "No comment provided"
	placeholderDate    = "Date unavailable"

	reviewDateLayout = "January 2, 2006"
)

// reviewDateFormats are the timestamp layouts the platform has been observed
// to emit for dateCreated
var reviewDateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeCartItem maps a possibly-malformed stored cart line onto the
// canonical shape. The product ID may arrive flat or nested under a wrapper
// object; quantity defaults to 1 and is never below 1.
func NormalizeCartItem(raw RawCartItem) CartLineItem {
	item := CartLineItem{
		ProductID: raw.ProductID.ID,
		VariantID: raw.VariantID,
		Quantity:  1,
	}

	if item.VariantID == "" {
		item.VariantID = raw.ProductID.VariantID
	}

	qty := raw.Quantity
	if !qty.Valid {
		qty = raw.ProductID.Quantity
	}
	if qty.Valid && qty.Value >= 1 {
		item.Quantity = qty.Value
	}

	return item
}

// NormalizeReview maps a raw platform review onto the canonical shape.
// Ratings outside 1..5 become 0, blank text fields get placeholders, and a
// missing ID is replaced with a synthesized one.
func NormalizeReview(raw RawReview) Review {
	review := Review{
		ID:      raw.ID,
		Title:   strings.TrimSpace(raw.Reason),
		Comment: strings.TrimSpace(raw.Comment),
		Date:    placeholderDate,
	}

	if review.ID == "" {
		review.ID = uuid.NewString()
	}

	if raw.Rating.Valid {
		r := raw.Rating.Float64()
		if r >= minRating && r <= maxRating {
			review.Rating = r
		}
	}

	if review.Title == "" {
		review.Title = placeholderTitle
	}
	if review.Comment == "" {
		review.Comment = placeholderComment
	}

	if formatted, ok := formatReviewDate(raw.DateCreated); ok {
		review.Date = formatted
	}

	if reply := strings.TrimSpace(raw.Reply); reply != "" {
		review.Reply = reply
	}

	return review
}

// NormalizeProduct maps a raw platform product onto the canonical shape,
// tolerating the alternate field spellings the platform uses
func NormalizeProduct(raw RawProduct) Product {
	product := Product{
		ID:          raw.ID,
		Slug:        firstNonEmpty(raw.Slug, raw.Handle),
		Name:        firstNonEmpty(raw.Name, raw.Title),
		Description: raw.Description,
		Price:       decimal.Zero,
		Cost:        decimal.Zero,
		ImageURL:    firstNonEmpty(raw.ImageURL, raw.Image),
	}

	if raw.Price.Valid {
		product.Price = raw.Price.Value
	}
	if raw.Cost.Valid {
		product.Cost = raw.Cost.Value
	}

	for _, v := range raw.Variants {
		variant := Variant{
			ID:    v.ID,
			Name:  v.Name,
			Price: product.Price,
		}
		if v.Price.Valid {
			variant.Price = v.Price.Value
		}
		product.Variants = append(product.Variants, variant)
	}

	return product
}

// ComputeReviewStats summarizes reviews for display. Every input review
// counts toward the total, but the average and histogram only consider
// ratings inside the valid 1..5 range.
func ComputeReviewStats(reviews []Review) ReviewStats {
	stats := ReviewStats{
		TotalReviews:    len(reviews),
		RatingBreakdown: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var sum float64
	var valid int
	for i := range reviews {
		if !reviews[i].HasValidRating() {
			continue
		}
		sum += reviews[i].Rating
		valid++
		stats.RatingBreakdown[int(math.Round(reviews[i].Rating))]++
	}

	if valid > 0 {
		stats.AverageRating = math.Round(sum/float64(valid)*10) / 10
	}

	return stats
}

// formatReviewDate renders a platform timestamp as a reader-friendly date
func formatReviewDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, layout := range reviewDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(reviewDateLayout), true
		}
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
