package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"art-seeder/models"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// fakePlatform protokolliert alle Aufrufe in Reihenfolge und vergibt fortlaufende IDs.
type fakePlatform struct {
	calls    []string
	nextID   int
	loginErr error
	failUser map[string]error // nach Username
	failPub  map[string]error // nach Titel
	bulkErr  error

	users    []models.TargetUser
	pubs     []models.TargetPublication
	links    []models.CreationLink
	follows  [][]models.SocialEdge
	likes    [][]models.SocialEdge
	comments [][]models.SocialEdge
	collabs  []models.CollabRequest
	upgrades []models.UpgradeRequest
}

func (f *fakePlatform) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakePlatform) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakePlatform) CreateUser(ctx context.Context, user models.TargetUser) (string, error) {
	f.calls = append(f.calls, "user:"+user.Username)
	if err := f.failUser[user.Username]; err != nil {
		return "", err
	}
	f.users = append(f.users, user)
	return f.id("u"), nil
}

func (f *fakePlatform) CreatePublication(ctx context.Context, pub models.TargetPublication) (string, error) {
	f.calls = append(f.calls, "pub:"+pub.Title)
	if err := f.failPub[pub.Title]; err != nil {
		return "", err
	}
	f.pubs = append(f.pubs, pub)
	return f.id("p"), nil
}

func (f *fakePlatform) CreateCreationLink(ctx context.Context, link models.CreationLink) error {
	f.calls = append(f.calls, fmt.Sprintf("link:%s:%s:%s", link.PublicationID, link.UserID, link.Role))
	f.links = append(f.links, link)
	return nil
}

func (f *fakePlatform) BulkSetFollows(ctx context.Context, edges []models.SocialEdge) error {
	f.follows = append(f.follows, edges)
	return f.bulkErr
}

func (f *fakePlatform) BulkCreateLikes(ctx context.Context, edges []models.SocialEdge) error {
	f.likes = append(f.likes, edges)
	return f.bulkErr
}

func (f *fakePlatform) BulkCreateComments(ctx context.Context, edges []models.SocialEdge) error {
	f.comments = append(f.comments, edges)
	return f.bulkErr
}

func (f *fakePlatform) CreateCollabRequest(ctx context.Context, req models.CollabRequest) error {
	f.collabs = append(f.collabs, req)
	return nil
}

func (f *fakePlatform) CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) error {
	f.upgrades = append(f.upgrades, req)
	return nil
}

func (f *fakePlatform) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakePlatform) indexOf(call string) int {
	for i, c := range f.calls {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeCatalog struct {
	authErr  error
	artworks []models.SourceArtwork
	events   []models.SourceEvent
	artists  map[string][]models.SourceArtist // Nachladen pro Werk
}

func (c *fakeCatalog) Authenticate(ctx context.Context) error { return c.authErr }

func (c *fakeCatalog) FetchArtworks(ctx context.Context, count int) ([]models.SourceArtwork, error) {
	return c.artworks[:min(count, len(c.artworks))], nil
}

func (c *fakeCatalog) FetchArtistsFor(ctx context.Context, aw models.SourceArtwork) ([]models.SourceArtist, error) {
	return c.artists[aw.ID], nil
}

func (c *fakeCatalog) FetchEvents(ctx context.Context, count int, status string) ([]models.SourceEvent, error) {
	return c.events[:min(count, len(c.events))], nil
}

func (c *fakeCatalog) Name() string { return "fake" }

func testNormalizer() *FieldNormalizer {
	return NewFieldNormalizer(zap.NewNop(), NormalizerOptions{
		EmailDomain:    "seed.test",
		PaymentContact: "pay@seed.test",
		EventWindow:    365 * 24 * time.Hour,
		Now:            func() time.Time { return testNow },
	})
}

func artist(id string) models.SourceArtist {
	return models.SourceArtist{ID: id, Name: "Artist " + id, Slug: id, Birthday: "1970"}
}

func artwork(id string, artists ...models.SourceArtist) models.SourceArtwork {
	return models.SourceArtwork{
		ID:       id,
		Title:    "title-" + id,
		Date:     "2019",
		ImageURL: "https://img/" + id + ".jpg",
		Artists:  artists,
	}
}

func event(id string, artworks ...models.SourceArtwork) models.SourceEvent {
	return models.SourceEvent{
		ID:          id,
		Name:        "event-" + id,
		Partner:     &models.Partner{Name: "Gallery"},
		Location:    &models.Location{City: "Berlin", Coordinates: &models.Coordinates{Lat: 52.5, Lng: 13.4}},
		StartAt:     testNow.Add(24 * time.Hour),
		EndAt:       testNow.Add(30 * 24 * time.Hour),
		BookingHref: "https://www.artsy.net/show/" + id,
		Artworks:    artworks,
	}
}
