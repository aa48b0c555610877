package providers

import (
	"context"

	"art-seeder/models"
)

// Catalog ist das Interface, das jeder Quellkatalog (z.B. Artsy) implementieren muss.
type Catalog interface {
	// Authenticate holt das Zugriffstoken. Ohne Token kann kein Lauf stattfinden.
	Authenticate(ctx context.Context) error

	// FetchArtworks liefert bis zu count Werke.
	FetchArtworks(ctx context.Context, count int) ([]models.SourceArtwork, error)

	// FetchArtistsFor liefert die Künstler eines Werks.
	FetchArtistsFor(ctx context.Context, artwork models.SourceArtwork) ([]models.SourceArtist, error)

	// FetchEvents liefert bis zu count Ausstellungen mit dem gegebenen Status (z.B. "upcoming").
	FetchEvents(ctx context.Context, count int, status string) ([]models.SourceEvent, error)

	// Name gibt den eindeutigen Namen des Katalogs zurück (z.B. "artsy").
	Name() string
}
