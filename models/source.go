package models

import "time"

// SourceArtist ist ein Künstler, wie ihn der Quellkatalog liefert.
type SourceArtist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Birthday  string `json:"birthday,omitempty"` // Freitext, z.B. "1948" oder "1948/1950"
	Biography string `json:"biography,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// Money ist ein Preis in der kleinsten Währungseinheit (z.B. Cent).
type Money struct {
	Minor        int64  `json:"minor"`
	CurrencyCode string `json:"currency_code"`
}

// SourceArtwork ist ein Kunstwerk aus dem Quellkatalog.
type SourceArtwork struct {
	ID                    string         `json:"id"`
	Title                 string         `json:"title"`
	Date                  string         `json:"date,omitempty"`
	Category              string         `json:"category,omitempty"`
	EditionOf             *string        `json:"edition_of,omitempty"` // nil = Unikat
	IsForSale             bool           `json:"is_for_sale"`
	IsAcquireable         bool           `json:"is_acquireable"`
	IsSold                bool           `json:"is_sold"`
	Price                 *Money         `json:"price,omitempty"`
	ImageURL              string         `json:"image_url,omitempty"`
	Artists               []SourceArtist `json:"artists,omitempty"`
	Description           string         `json:"description,omitempty"`
	AdditionalInformation *string        `json:"additional_information,omitempty"`
}

// Partner ist die Galerie bzw. Institution hinter einer Ausstellung.
type Partner struct {
	Name string `json:"name"`
}

// Coordinates sind Geokoordinaten eines Veranstaltungsorts.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location beschreibt den Veranstaltungsort.
type Location struct {
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// SourceEvent ist eine Ausstellung (Show) inklusive der gezeigten Werke.
type SourceEvent struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CoverImageURL string          `json:"cover_image_url,omitempty"`
	Partner       *Partner        `json:"partner,omitempty"`
	Location      *Location       `json:"location,omitempty"`
	StartAt       time.Time       `json:"start_at"`
	EndAt         time.Time       `json:"end_at"`
	BookingHref   string          `json:"booking_href,omitempty"`
	Artworks      []SourceArtwork `json:"artworks,omitempty"`
}
