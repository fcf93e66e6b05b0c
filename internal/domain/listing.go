package domain

import "time"

type Listing struct {
	ID       int64  `json:"id"`
	OwnerID  int64  `json:"owner_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Location string `json:"location"`

	// Price is in whole currency units (USD). Minor-unit conversion
	// happens at the payment boundary.
	Price int64 `json:"price"`

	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	Beds          int       `json:"beds"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListingCreateReq struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Location      string    `json:"location"`
	Price         int64     `json:"price"`
	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	Beds          int       `json:"beds"`
}

// ListingPatch carries the mutable listing fields. Owner, identity and
// image are deliberately absent; they can never be set through an update
// payload.
type ListingPatch struct {
	Title         *string    `json:"title,omitempty"`
	Content       *string    `json:"content,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Price         *int64     `json:"price,omitempty"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
	AvailableTo   *time.Time `json:"available_to,omitempty"`
	Beds          *int       `json:"beds,omitempty"`
}

func (p ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Location == nil &&
		p.Price == nil && p.AvailableFrom == nil && p.AvailableTo == nil && p.Beds == nil
}

// ListingImage is the stored image blob, served verbatim and opaque to
// everything else.
type ListingImage struct {
	Data        []byte
	ContentType string
}
