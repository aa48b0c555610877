package artsy

import (
	"encoding/json"
	"strings"
	"time"

	"art-seeder/models"
)

// webBaseURL ergänzt relative Links (z.B. Show-href) zu absoluten URLs.
const webBaseURL = "https://www.artsy.net"

// TokenResponse ist die Antwort des xapp_token-Endpunkts.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expires_in"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type imageNode struct {
	URL string `json:"url"`
}

type moneyNode struct {
	Minor        int64  `json:"minor"`
	CurrencyCode string `json:"currencyCode"`
}

// ArtistNode ist ein Künstler in der GraphQL-Antwort.
type ArtistNode struct {
	InternalID     string `json:"internalID"`
	Name           string `json:"name"`
	Birthday       string `json:"birthday"`
	Slug           string `json:"slug"`
	BiographyBlurb *struct {
		Text string `json:"text"`
	} `json:"biographyBlurb"`
	Image *imageNode `json:"image"`
}

// ArtworkNode ist ein Werk in der GraphQL-Antwort.
type ArtworkNode struct {
	InternalID            string       `json:"internalID"`
	Title                 string       `json:"title"`
	Date                  string       `json:"date"`
	Category              string       `json:"category"`
	EditionOf             *string      `json:"editionOf"`
	IsForSale             bool         `json:"isForSale"`
	IsAcquireable         bool         `json:"isAcquireable"`
	IsSold                bool         `json:"isSold"`
	ListPrice             *moneyNode   `json:"listPrice"`
	Image                 *imageNode   `json:"image"`
	Description           string       `json:"description"`
	AdditionalInformation *string      `json:"additionalInformation"`
	Artists               []ArtistNode `json:"artists"`
}

// ShowNode ist eine Ausstellung in der GraphQL-Antwort.
type ShowNode struct {
	InternalID  string     `json:"internalID"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Href        string     `json:"href"`
	StartAt     string     `json:"startAt"`
	EndAt       string     `json:"endAt"`
	CoverImage  *imageNode `json:"coverImage"`
	Partner     *struct {
		Name string `json:"name"`
	} `json:"partner"`
	Location *struct {
		Address     string `json:"address"`
		City        string `json:"city"`
		Country     string `json:"country"`
		Coordinates *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"coordinates"`
	} `json:"location"`
	ArtworksConnection struct {
		Edges []struct {
			Node ArtworkNode `json:"node"`
		} `json:"edges"`
	} `json:"artworksConnection"`
}

type artworksData struct {
	ArtworksConnection struct {
		Edges []struct {
			Node ArtworkNode `json:"node"`
		} `json:"edges"`
	} `json:"artworksConnection"`
}

type artworkArtistsData struct {
	Artwork *struct {
		Artists []ArtistNode `json:"artists"`
	} `json:"artwork"`
}

type showsData struct {
	ShowsConnection struct {
		Edges []struct {
			Node ShowNode `json:"node"`
		} `json:"edges"`
	} `json:"showsConnection"`
}

func mapArtist(a ArtistNode) models.SourceArtist {
	artist := models.SourceArtist{
		ID:       a.InternalID,
		Name:     a.Name,
		Birthday: a.Birthday,
		Slug:     a.Slug,
	}
	if a.BiographyBlurb != nil {
		artist.Biography = a.BiographyBlurb.Text
	}
	if a.Image != nil {
		artist.ImageURL = a.Image.URL
	}
	return artist
}

func mapArtwork(n ArtworkNode) models.SourceArtwork {
	aw := models.SourceArtwork{
		ID:                    n.InternalID,
		Title:                 n.Title,
		Date:                  n.Date,
		Category:              n.Category,
		EditionOf:             n.EditionOf,
		IsForSale:             n.IsForSale,
		IsAcquireable:         n.IsAcquireable,
		IsSold:                n.IsSold,
		Description:           n.Description,
		AdditionalInformation: n.AdditionalInformation,
	}
	// Preisspannen kommen als leeres Objekt an und gelten als "kein Preis"
	if n.ListPrice != nil && n.ListPrice.CurrencyCode != "" {
		aw.Price = &models.Money{Minor: n.ListPrice.Minor, CurrencyCode: n.ListPrice.CurrencyCode}
	}
	if n.Image != nil {
		aw.ImageURL = n.Image.URL
	}
	for _, a := range n.Artists {
		aw.Artists = append(aw.Artists, mapArtist(a))
	}
	return aw
}

func mapShow(s ShowNode) models.SourceEvent {
	ev := models.SourceEvent{
		ID:          s.InternalID,
		Name:        s.Name,
		Description: s.Description,
		StartAt:     parseTime(s.StartAt),
		EndAt:       parseTime(s.EndAt),
	}
	if s.Href != "" {
		ev.BookingHref = s.Href
		if strings.HasPrefix(s.Href, "/") {
			ev.BookingHref = webBaseURL + s.Href
		}
	}
	if s.CoverImage != nil {
		ev.CoverImageURL = s.CoverImage.URL
	}
	if s.Partner != nil {
		ev.Partner = &models.Partner{Name: s.Partner.Name}
	}
	if s.Location != nil {
		ev.Location = &models.Location{
			Address: s.Location.Address,
			City:    s.Location.City,
			Country: s.Location.Country,
		}
		if s.Location.Coordinates != nil {
			ev.Location.Coordinates = &models.Coordinates{Lat: s.Location.Coordinates.Lat, Lng: s.Location.Coordinates.Lng}
		}
	}
	for _, e := range s.ArtworksConnection.Edges {
		ev.Artworks = append(ev.Artworks, mapArtwork(e.Node))
	}
	return ev
}

// parseTime liest ISO-Zeitstempel; unlesbare Werte ergeben den Nullzeitpunkt.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
