package bakery

import (
	"encoding/json"

	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

// Document names, shared by every store backend.
const (
	DocProducts = "products"
	DocGallery  = "gallery"
	DocReviews  = "reviews"
	DocAbout    = "about"
	DocToday    = "today"
)

// Product is one item of the product catalogue. Price is kept exactly as
// submitted by the admin form.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

type GalleryItem struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Review is a customer review. ID is a millisecond timestamp; name, message
// and rating keep whatever JSON value the client sent.
type Review struct {
	ID      int64           `json:"id"`
	Name    json.RawMessage `json:"name"`
	Message json.RawMessage `json:"message"`
	Rating  json.RawMessage `json:"rating"`
	Date    string          `json:"date"`
}

// AboutInfo is the "about us" text block.
type AboutInfo struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Description2 string `json:"description2"`
}

// TodayBake is the single highlighted bake of the day.
type TodayBake struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Ingredients string `json:"ingredients"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

// ProductInput carries the text fields of a product form.
type ProductInput struct {
	Name        string
	Price       string
	Description string
}

// ReviewInput is the raw review body; absent or falsy fields get defaults.
type ReviewInput struct {
	Name    json.RawMessage `json:"name"`
	Message json.RawMessage `json:"message"`
	Rating  json.RawMessage `json:"rating"`
}

// AboutInput is the raw about body. Absent fields are written as "".
type AboutInput struct {
	Title        json.RawMessage `json:"title"`
	Description  json.RawMessage `json:"description"`
	Description2 json.RawMessage `json:"description2"`
}

type TodayInput struct {
	Name        string
	Ingredients string
	Description string
}

// DefaultAbout is written when no about document exists yet.
var DefaultAbout = AboutInfo{
	Title:        "About Dory's Bakehouse",
	Description:  "At Dory’s Bakehouse, every cake is baked with love, passion, and premium ingredients.",
	Description2: "Freshly prepared, beautifully decorated, and irresistibly delicious – crafted to bring smiles.",
}

const (
	defaultReviewName   = `"Anonymous"`
	defaultReviewRating = "5"
	// reviewDateLayout matches the ISO-8601 form with milliseconds and a Z suffix.
	reviewDateLayout = "2006-01-02T15:04:05.000Z"
)

// Document is a named document together with the value it starts with.
type Document struct {
	Name    string
	Default json.RawMessage
}

// Documents lists every document the service uses, in creation order.
func Documents() []Document {
	about, _ := json.Marshal(DefaultAbout)
	return []Document{
		{Name: DocProducts, Default: json.RawMessage(`[]`)},
		{Name: DocGallery, Default: json.RawMessage(`[]`)},
		{Name: DocReviews, Default: json.RawMessage(`[]`)},
		{Name: DocAbout, Default: about},
		{Name: DocToday, Default: json.RawMessage(`null`)},
		{Name: store.CountersDocument, Default: json.RawMessage(`{}`)},
	}
}
