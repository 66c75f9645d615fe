package crawler

import "time"

// Category is one node of the discovered category tree. ID is hierarchical
// (see CategoryID); Code is the upstream slug and the natural key used to
// match categories across crawl passes. Categories are created once and
// never mutated.
type Category struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Code     string `json:"code"`
	Name     string `json:"name"`
}

// Product is one harvested product snapshot. SrcID is the upstream product
// identifier; (SrcID, Name) is the natural key that resolves a prior local
// ID across re-crawls. Nil pointer fields mean "unknown".
type Product struct {
	ID              string    `json:"id"`
	SrcID           string    `json:"src_id"`
	CategoryID      string    `json:"category_id"`
	Name            string    `json:"name"`
	Image           *string   `json:"image,omitempty"`
	Rating          *float64  `json:"rating,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Characteristics *string   `json:"characteristics,omitempty"`
	ObservedAt      time.Time `json:"observed_at"`
}

// SupplierOffer is a competing merchant offer for a product. The natural key
// is (ProductID, Name); an offer row is replaced, never duplicated, on each
// crawl pass.
type SupplierOffer struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Rating    *float64 `json:"rating,omitempty"`
}

// CatalogNode is a category entry as reported by the embedded catalog
// payload of a rendered category page.
type CatalogNode struct {
	Code     string        `json:"code"`
	Title    string        `json:"title"`
	Link     string        `json:"link"`
	SubNodes []CatalogNode `json:"subNodes"`
}

// CatalogPayload is the catalog state object embedded in category pages.
type CatalogPayload struct {
	CategoryInfo CatalogNode `json:"categoryInfo"`
}

// ProductCard is one product summary entry from a search results page.
type ProductCard struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ShopLink string  `json:"shopLink"`
	Price    float64 `json:"unitPrice"`
}

// SearchPage is one page of the product search endpoint.
type SearchPage struct {
	Data  []ProductCard `json:"data"`
	Total int           `json:"total"`
}

// ItemPayload is the product state object embedded in detail pages.
type ItemPayload struct {
	Card ItemCard `json:"card"`
}

// ItemCard carries the detail fields the crawler extracts for a product.
type ItemCard struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Rating         *float64       `json:"rating"`
	Description    string         `json:"description"`
	GalleryImages  []GalleryImage `json:"galleryImages"`
	Specifications any            `json:"specifications"`
}

// GalleryImage is one entry of a product image gallery.
type GalleryImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

// PrimaryImage returns the best-known image URL of the card, or "".
func (c ItemCard) PrimaryImage() string {
	for _, img := range c.GalleryImages {
		if img.Large != "" {
			return img.Large
		}
		if img.Medium != "" {
			return img.Medium
		}
	}
	return ""
}

// Offer is one merchant row from the supplier offers endpoint.
type Offer struct {
	MerchantName   string   `json:"merchantName"`
	Price          float64  `json:"price"`
	MerchantRating *float64 `json:"merchantRating"`
}

// OffersPage is the response of the supplier offers endpoint.
type OffersPage struct {
	Offers []Offer `json:"offers"`
	Total  int     `json:"total"`
}

// PassSummary is published to the completion queue after a crawl pass.
type PassSummary struct {
	PassID     string    `json:"pass_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Categories int       `json:"categories"`
	Products   int       `json:"products"`
	Suppliers  int       `json:"suppliers"`
	Skipped    int       `json:"skipped"`
}

// ratingMax bounds the upstream rating scale; anything outside [0, ratingMax]
// is recorded as unknown rather than clamped to the boundary.
const ratingMax = 10

// NormalizeRating applies the clamp-to-unknown rule shared by products and
// supplier offers.
func NormalizeRating(r *float64) *float64 {
	if r == nil || *r < 0 || *r > ratingMax {
		return nil
	}
	v := *r
	return &v
}
