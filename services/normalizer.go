package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"art-seeder/models"
)

// ErrSkip markiert Datensätze, die aus Qualitätsgründen nicht migriert werden.
var ErrSkip = errors.New("datensatz übersprungen")

// SkipError beschreibt, warum ein Quelldatensatz übersprungen wurde.
type SkipError struct {
	Kind     models.EntityKind
	SourceID string
	Reason   string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s %s übersprungen: %s", e.Kind, e.SourceID, e.Reason)
}

func (e *SkipError) Unwrap() error { return ErrSkip }

func skip(kind models.EntityKind, id, reason string) error {
	return &SkipError{Kind: kind, SourceID: id, Reason: reason}
}

// DateFallback wird gemeldet, wenn ein Datum nicht gelesen werden konnte und "jetzt" eingesetzt wurde.
type DateFallback struct {
	Raw      string
	Residual string
	Err      error
}

func (f *DateFallback) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("datum %q (%q) nicht lesbar: %v", f.Raw, f.Residual, f.Err)
	}
	return fmt.Sprintf("datum %q enthält keine verwertbaren Ziffern", f.Raw)
}

// DateResult ist das Ergebnis einer Datumsableitung. Fallback ist gesetzt, wenn Time = jetzt ersetzt wurde.
type DateResult struct {
	Time     time.Time
	Fallback *DateFallback
}

var (
	slashSuffix = regexp.MustCompile(`/.*$`)
	nonDigit    = regexp.MustCompile(`\D+`)
	isoDate     = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
	rangeSuffix = regexp.MustCompile(`\s*[-–]\s*\d{1,4}\s*$`)
	alphaToken  = regexp.MustCompile(`\p{L}+\.?`)
	yearOnly    = regexp.MustCompile(`^\d{4}$`)
	firstInt    = regexp.MustCompile(`\d+`)
)

// SplitName zerlegt einen vollen Namen: erstes Token = Vorname, Rest = Nachname.
func SplitName(full string) (first, surname string) {
	parts := strings.Fields(norm.NFC.String(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// BirthDate leitet ein Geburtsdatum aus einem Freitextfeld ab.
func BirthDate(raw string, now time.Time) DateResult {
	residual := slashSuffix.ReplaceAllString(strings.TrimSpace(raw), "")
	residual = nonDigit.ReplaceAllString(residual, "")
	return parseLoose(raw, residual, now)
}

// ArtworkDate leitet das Entstehungsdatum eines Werks ab ("ca. 1970", "1990-1995", "1960s").
func ArtworkDate(raw string, now time.Time) DateResult {
	s := strings.TrimSpace(raw)
	if !isoDate.MatchString(s) {
		s = rangeSuffix.ReplaceAllString(s, "")
	}
	s = alphaToken.ReplaceAllString(s, " ")
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " ,.;:-–/")
	return parseLoose(raw, s, now)
}

func parseLoose(raw, residual string, now time.Time) DateResult {
	if residual == "" {
		return DateResult{Time: now, Fallback: &DateFallback{Raw: raw}}
	}
	if yearOnly.MatchString(residual) {
		year, _ := strconv.Atoi(residual)
		return DateResult{Time: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)}
	}
	t, err := dateparse.ParseIn(residual, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return DateResult{Time: now, Fallback: &DateFallback{Raw: raw, Residual: residual, Err: err}}
	}
	return DateResult{Time: t}
}

// Copies liefert die Auflage: ohne Angabe ein Unikat, sonst die erste Zahl der Angabe.
func Copies(editionOf *string) int {
	if editionOf == nil || strings.TrimSpace(*editionOf) == "" {
		return 1
	}
	m := firstInt.FindString(*editionOf)
	if m == "" {
		return 1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 1
	}
	return n
}

// Description setzt Beschreibung und optionale Zusatzinformation zusammen.
func Description(primary string, additional *string) string {
	out := strings.TrimSpace(primary)
	if additional == nil {
		return out
	}
	extra := strings.TrimSpace(*additional)
	if extra == "" {
		return out
	}
	r, size := utf8.DecodeRuneInString(extra)
	extra = string(unicode.ToUpper(r)) + extra[size:]
	if out == "" {
		return strings.TrimRightFunc(extra, unicode.IsSpace)
	}
	return strings.TrimRightFunc(out+"\n\n"+extra, unicode.IsSpace)
}

// Venue baut den Anzeigetext aus Partnername und Adressbestandteilen.
func Venue(partner models.Partner, loc models.Location) string {
	parts := []string{}
	for _, p := range []string{partner.Name, loc.Address, loc.City, loc.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizerOptions steuern die Ableitung der Zieldatensätze.
type NormalizerOptions struct {
	EmailDomain    string
	PaymentContact string
	EventWindow    time.Duration // 0 = kein Zeitfenster
	Now            func() time.Time
}

// FieldNormalizer übersetzt Quelldatensätze in Zieldatensätze.
type FieldNormalizer struct {
	logger *zap.Logger
	opts   NormalizerOptions
}

func NewFieldNormalizer(logger *zap.Logger, opts NormalizerOptions) *FieldNormalizer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &FieldNormalizer{logger: logger, opts: opts}
}

func (n *FieldNormalizer) resolveDate(kind models.EntityKind, id string, res DateResult) time.Time {
	if res.Fallback != nil {
		n.logger.Warn("Datum nicht lesbar, verwende aktuellen Zeitpunkt",
			zap.String("kind", string(kind)),
			zap.String("source_id", id),
			zap.String("raw", res.Fallback.Raw),
			zap.Error(res.Fallback))
	}
	return res.Time
}

// Artist erzeugt den Künstler-Account zu einem Quellkünstler.
func (n *FieldNormalizer) Artist(a models.SourceArtist) (models.TargetUser, error) {
	if strings.TrimSpace(a.ID) == "" {
		return models.TargetUser{}, skip(models.EntityArtist, a.ID, "keine ID")
	}
	username := strings.ToLower(strings.TrimSpace(a.Slug))
	if username == "" {
		username = strings.ToLower(a.ID)
	}
	first, surname := SplitName(a.Name)
	nickname := strings.TrimSpace(norm.NFC.String(a.Name))
	if nickname == "" {
		nickname = username
	}
	return models.TargetUser{
		Username: username,
		Nickname: nickname,
		Email:    fmt.Sprintf("%s@%s", username, n.opts.EmailDomain),
		Role:     models.RoleArtist,
		Creator: &models.CreatorProfile{
			Name:           first,
			Surname:        surname,
			BirthDate:      n.resolveDate(models.EntityArtist, a.ID, BirthDate(a.Birthday, n.opts.Now())),
			Bio:            strings.TrimSpace(a.Biography),
			AvatarURL:      a.ImageURL,
			PaymentContact: n.opts.PaymentContact,
		},
	}, nil
}

// CheckArtwork prüft die Qualitätsregeln eines Werks, ohne es umzuwandeln.
func CheckArtwork(aw models.SourceArtwork) error {
	onSale := aw.IsForSale || aw.IsAcquireable
	switch {
	case onSale && aw.Price == nil:
		return skip(models.EntityArtwork, aw.ID, "verkäuflich ohne Preis")
	case strings.TrimSpace(aw.ImageURL) == "":
		return skip(models.EntityArtwork, aw.ID, "kein Bild")
	case len(aw.Artists) == 0:
		return skip(models.EntityArtwork, aw.ID, "keine Künstler")
	}
	return nil
}

// Artwork erzeugt die Werk-Publikation. Creators werden erst beim Upload verknüpft.
func (n *FieldNormalizer) Artwork(aw models.SourceArtwork) (models.TargetPublication, error) {
	if err := CheckArtwork(aw); err != nil {
		return models.TargetPublication{}, err
	}
	onSale := aw.IsForSale || aw.IsAcquireable
	copies := Copies(aw.EditionOf)

	attrs := &models.ArtworkAttributes{
		Category:     aw.Category,
		CreationDate: n.resolveDate(models.EntityArtwork, aw.ID, ArtworkDate(aw.Date, n.opts.Now())),
		Copies:       copies,
		OnSale:       onSale,
	}
	if onSale {
		attrs.PriceMinor = aw.Price.Minor
		attrs.Currency = aw.Price.CurrencyCode
		attrs.PaymentContact = n.opts.PaymentContact
		if !aw.IsSold {
			attrs.AvailableCopies = copies
		}
	}

	return models.TargetPublication{
		Kind:        models.KindArtworkPublication,
		Title:       strings.TrimSpace(aw.Title),
		Description: Description(aw.Description, aw.AdditionalInformation),
		ImageURL:    aw.ImageURL,
		Artwork:     attrs,
	}, nil
}

// CheckEvent prüft die Qualitätsregeln einer Ausstellung inklusive Zeitfenster.
func (n *FieldNormalizer) CheckEvent(ev models.SourceEvent) error {
	switch {
	case ev.Partner == nil:
		return skip(models.EntityEvent, ev.ID, "kein Partner")
	case ev.Location == nil:
		return skip(models.EntityEvent, ev.ID, "kein Ort")
	case ev.Location.Coordinates == nil:
		return skip(models.EntityEvent, ev.ID, "keine Koordinaten")
	case strings.TrimSpace(ev.BookingHref) == "":
		return skip(models.EntityEvent, ev.ID, "kein Buchungslink")
	case len(ev.Artworks) == 0:
		return skip(models.EntityEvent, ev.ID, "keine Werke")
	}
	if n.opts.EventWindow > 0 {
		now := n.opts.Now()
		lower, upper := now.Add(-n.opts.EventWindow), now.Add(n.opts.EventWindow)
		inWindow := func(t time.Time) bool { return t.After(lower) && t.Before(upper) }
		if !inWindow(ev.StartAt) || !inWindow(ev.EndAt) {
			return skip(models.EntityEvent, ev.ID, "außerhalb des Zeitfensters")
		}
	}
	return nil
}

// Event erzeugt die Event-Publikation.
func (n *FieldNormalizer) Event(ev models.SourceEvent) (models.TargetPublication, error) {
	if err := n.CheckEvent(ev); err != nil {
		return models.TargetPublication{}, err
	}
	return models.TargetPublication{
		Kind:        models.KindEventPublication,
		Title:       strings.TrimSpace(ev.Name),
		Description: Description(ev.Description, nil),
		ImageURL:    ev.CoverImageURL,
		Event: &models.EventAttributes{
			Venue:       Venue(*ev.Partner, *ev.Location),
			Lat:         ev.Location.Coordinates.Lat,
			Lng:         ev.Location.Coordinates.Lng,
			StartAt:     ev.StartAt,
			EndAt:       ev.EndAt,
			BookingLink: ev.BookingHref,
		},
	}, nil
}
