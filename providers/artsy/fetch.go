package artsy

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"art-seeder/config"
	"art-seeder/models"
)

//go:embed queries/*.graphql
var queryFS embed.FS

var httpClient = &http.Client{Timeout: 60 * time.Second}

// ErrUnauthenticated wird geliefert, wenn vor Authenticate abgefragt wird.
var ErrUnauthenticated = errors.New("artsy: kein xapp-token, Authenticate zuerst aufrufen")

// Fetcher implementiert das Catalog-Interface für Artsy.
type Fetcher struct {
	Config  *config.Config
	Logger  *zap.Logger
	limiter *rate.Limiter
	token   string
}

// NewFetcher erstellt einen neuen Artsy-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	limit := rate.Inf
	if cfg.ArtsyRatePerSecond > 0 {
		limit = rate.Limit(cfg.ArtsyRatePerSecond)
	}
	return &Fetcher{Config: cfg, Logger: logger, limiter: rate.NewLimiter(limit, 1)}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "artsy"
}

// Authenticate holt ein xapp-Token mit Client-ID und Secret.
func (f *Fetcher) Authenticate(ctx context.Context) error {
	form := url.Values{
		"client_id":     {f.Config.ArtsyClientID},
		"client_secret": {f.Config.ArtsyClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(f.Config.ArtsyBaseURL, "/")+"/api/tokens/xapp_token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("xapp-token anfordern: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("xapp-token abgelehnt: status %d: %s", resp.StatusCode, string(body))
	}

	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("xapp-token-antwort lesen: %w", err)
	}
	if tr.Token == "" {
		return fmt.Errorf("xapp-token-antwort ohne token")
	}
	f.token = tr.Token
	f.Logger.Info("Artsy-Token erhalten.", zap.String("expires_in", tr.ExpiresIn))
	return nil
}

// FetchArtworks liefert bis zu count Werke, ohne Künstler.
func (f *Fetcher) FetchArtworks(ctx context.Context, count int) ([]models.SourceArtwork, error) {
	if count <= 0 {
		return nil, nil
	}
	var data artworksData
	if err := f.query(ctx, "artworks.graphql", map[string]any{"first": count}, &data); err != nil {
		return nil, err
	}
	artworks := make([]models.SourceArtwork, 0, len(data.ArtworksConnection.Edges))
	for _, e := range data.ArtworksConnection.Edges {
		artworks = append(artworks, mapArtwork(e.Node))
	}
	f.Logger.Info("Werke von Artsy geladen", zap.Int("requested", count), zap.Int("found", len(artworks)))
	return artworks, nil
}

// FetchArtistsFor lädt die Künstler eines Werks nach.
func (f *Fetcher) FetchArtistsFor(ctx context.Context, artwork models.SourceArtwork) ([]models.SourceArtist, error) {
	var data artworkArtistsData
	if err := f.query(ctx, "artwork_artists.graphql", map[string]any{"id": artwork.ID}, &data); err != nil {
		return nil, err
	}
	if data.Artwork == nil {
		return nil, nil
	}
	artists := make([]models.SourceArtist, 0, len(data.Artwork.Artists))
	for _, a := range data.Artwork.Artists {
		artists = append(artists, mapArtist(a))
	}
	return artists, nil
}

// FetchEvents liefert bis zu count Ausstellungen inklusive ihrer Werke und Künstler.
func (f *Fetcher) FetchEvents(ctx context.Context, count int, status string) ([]models.SourceEvent, error) {
	if count <= 0 {
		return nil, nil
	}
	vars := map[string]any{"first": count}
	if status != "" {
		vars["status"] = strings.ToUpper(status)
	}
	var data showsData
	if err := f.query(ctx, "shows.graphql", vars, &data); err != nil {
		return nil, err
	}
	events := make([]models.SourceEvent, 0, len(data.ShowsConnection.Edges))
	for _, e := range data.ShowsConnection.Edges {
		events = append(events, mapShow(e.Node))
	}
	f.Logger.Info("Ausstellungen von Artsy geladen", zap.Int("requested", count), zap.Int("found", len(events)))
	return events, nil
}

// query führt eine eingebettete GraphQL-Abfrage aus und dekodiert data nach out.
func (f *Fetcher) query(ctx context.Context, name string, vars map[string]any, out any) error {
	if f.token == "" {
		return ErrUnauthenticated
	}
	q, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(graphQLRequest{Query: string(q), Variables: vars})
	if err != nil {
		return err
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Config.ArtsyGraphQLURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-XAPP-Token", f.token)

	log := f.Logger.With(zap.String("query", name))
	log.Debug("Rufe Artsy GraphQL auf")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Artsy hat nicht-200-Status zurückgegeben",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return fmt.Errorf("artsy %s: status %d", name, resp.StatusCode)
	}

	var gr graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("artsy %s: antwort lesen: %w", name, err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("artsy %s: %s", name, strings.Join(msgs, "; "))
	}
	if len(gr.Data) == 0 {
		return nil
	}
	return json.Unmarshal(gr.Data, out)
}
