package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"art-seeder/models"
)

// Platform ist die Schnittstelle zur Zielplattform.
type Platform interface {
	Login(ctx context.Context) error
	CreateUser(ctx context.Context, user models.TargetUser) (string, error)
	CreatePublication(ctx context.Context, pub models.TargetPublication) (string, error)
	CreateCreationLink(ctx context.Context, link models.CreationLink) error
	BulkSetFollows(ctx context.Context, edges []models.SocialEdge) error
	BulkCreateLikes(ctx context.Context, edges []models.SocialEdge) error
	BulkCreateComments(ctx context.Context, edges []models.SocialEdge) error
	CreateCollabRequest(ctx context.Context, req models.CollabRequest) error
	CreateUpgradeRequest(ctx context.Context, req models.UpgradeRequest) error
}

// ErrNoParticipants: keines der Werke eines Events konnte migriert werden.
var ErrNoParticipants = errors.New("keine teilnehmenden Künstler")

// DependencyError meldet, dass ein Datensatz wegen einer fehlgeschlagenen Abhängigkeit nicht angelegt wurde.
type DependencyError struct {
	Kind         models.EntityKind
	SourceID     string
	Dependency   models.EntityKind
	DependencyID string
	Err          error
}

func (e *DependencyError) Error() string {
	if e.DependencyID == "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.SourceID, e.Err)
	}
	return fmt.Sprintf("%s %s: abhängigkeit %s %s fehlgeschlagen: %v", e.Kind, e.SourceID, e.Dependency, e.DependencyID, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// PlainUser ist ein frisch generierter Account ohne Künstlerprofil.
type PlainUser struct {
	ID      string
	Name    string
	Surname string
}

// Uploader legt Zieldatensätze in Abhängigkeitsreihenfolge an: Künstler, Werke, Events, Posts.
type Uploader struct {
	platform   Platform
	resolver   *Resolver
	normalizer *FieldNormalizer
	text       *TextGenerator
	rng        *rand.Rand
	report     *Report
	logger     *zap.Logger
}

func NewUploader(platform Platform, resolver *Resolver, normalizer *FieldNormalizer, text *TextGenerator, rng *rand.Rand, report *Report, logger *zap.Logger) *Uploader {
	return &Uploader{
		platform:   platform,
		resolver:   resolver,
		normalizer: normalizer,
		text:       text,
		rng:        rng,
		report:     report,
		logger:     logger,
	}
}

// EnsureArtist liefert die Ziel-ID eines Künstlers und legt ihn bei Bedarf an.
func (u *Uploader) EnsureArtist(ctx context.Context, a models.SourceArtist) (string, error) {
	if id, ok := u.resolver.Resolve(models.EntityArtist, a.ID); ok {
		u.report.reused(StageArtists, models.EntityArtist)
		return id, nil
	}
	log := u.logger.With(zap.String("artist_id", a.ID))
	u.report.Stage(StageArtists).Attempted++

	user, err := u.normalizer.Artist(a)
	if err != nil {
		log.Info("Künstler übersprungen", zap.Error(err))
		u.report.issue(StageArtists, models.EntityArtist, a.ID, err)
		return "", err
	}
	id, err := u.platform.CreateUser(ctx, user)
	if err != nil {
		log.Error("Künstler konnte nicht angelegt werden", zap.Error(err))
		u.report.issue(StageArtists, models.EntityArtist, a.ID, err)
		return "", err
	}
	u.resolver.Bind(models.EntityArtist, a.ID, id)
	u.report.created(StageArtists, models.EntityArtist)
	log.Debug("Künstler angelegt", zap.String("target_id", id))
	return id, nil
}

// UploadArtwork legt ein Werk samt Künstlern an und gibt die Ziel-IDs der Autoren zurück.
// Für bereits migrierte Werke werden die bekannten Autoren geliefert.
func (u *Uploader) UploadArtwork(ctx context.Context, aw models.SourceArtwork) ([]string, error) {
	if _, ok := u.resolver.Resolve(models.EntityArtwork, aw.ID); ok {
		u.report.reused(StageArtworks, models.EntityArtwork)
		return u.resolvedAuthors(aw), nil
	}
	log := u.logger.With(zap.String("artwork_id", aw.ID))
	u.report.Stage(StageArtworks).Attempted++

	pub, err := u.normalizer.Artwork(aw)
	if err != nil {
		log.Info("Werk übersprungen", zap.Error(err))
		u.report.issue(StageArtworks, models.EntityArtwork, aw.ID, err)
		return nil, err
	}

	authors := make([]string, 0, len(aw.Artists))
	for _, a := range aw.Artists {
		id, err := u.EnsureArtist(ctx, a)
		if err != nil {
			depErr := &DependencyError{
				Kind:         models.EntityArtwork,
				SourceID:     aw.ID,
				Dependency:   models.EntityArtist,
				DependencyID: a.ID,
				Err:          err,
			}
			log.Warn("Werk wegen Künstler abgebrochen", zap.Error(depErr))
			u.report.issue(StageArtworks, models.EntityArtwork, aw.ID, depErr)
			return nil, depErr
		}
		authors = appendUnique(authors, id)
	}

	pubID, err := u.platform.CreatePublication(ctx, pub)
	if err != nil {
		log.Error("Werk konnte nicht angelegt werden", zap.Error(err))
		u.report.issue(StageArtworks, models.EntityArtwork, aw.ID, err)
		return nil, fmt.Errorf("werk %s anlegen: %w", aw.ID, err)
	}
	u.resolver.Bind(models.EntityArtwork, aw.ID, pubID)
	u.report.created(StageArtworks, models.EntityArtwork)

	u.link(ctx, pubID, authors, models.RoleAuthor)
	return authors, nil
}

// UploadEvent legt zuerst die Werke eines Events an, dann das Event selbst und verknüpft die Künstler.
func (u *Uploader) UploadEvent(ctx context.Context, ev models.SourceEvent) error {
	if _, ok := u.resolver.Resolve(models.EntityEvent, ev.ID); ok {
		u.report.reused(StageEvents, models.EntityEvent)
		return nil
	}
	log := u.logger.With(zap.String("event_id", ev.ID))
	u.report.Stage(StageEvents).Attempted++

	// Prüfung vor jedem Aufruf, damit übersprungene Events keine Werke anlegen
	pub, err := u.normalizer.Event(ev)
	if err != nil {
		log.Info("Event übersprungen", zap.Error(err))
		u.report.issue(StageEvents, models.EntityEvent, ev.ID, err)
		return err
	}

	var participants []string
	for _, aw := range ev.Artworks {
		if err := ctx.Err(); err != nil {
			return err
		}
		authors, err := u.UploadArtwork(ctx, aw)
		if err != nil {
			continue
		}
		for _, id := range authors {
			participants = appendUnique(participants, id)
		}
	}
	if len(participants) == 0 {
		depErr := &DependencyError{Kind: models.EntityEvent, SourceID: ev.ID, Dependency: models.EntityArtwork, Err: ErrNoParticipants}
		log.Warn("Event ohne migrierte Werke", zap.Error(depErr))
		u.report.issue(StageEvents, models.EntityEvent, ev.ID, depErr)
		return depErr
	}

	pubID, err := u.platform.CreatePublication(ctx, pub)
	if err != nil {
		log.Error("Event konnte nicht angelegt werden", zap.Error(err))
		u.report.issue(StageEvents, models.EntityEvent, ev.ID, err)
		return fmt.Errorf("event %s anlegen: %w", ev.ID, err)
	}
	u.resolver.Bind(models.EntityEvent, ev.ID, pubID)
	u.report.created(StageEvents, models.EntityEvent)

	u.link(ctx, pubID, participants, models.RoleParticipant)
	return nil
}

// CreatePlainUsers legt count generierte Accounts ohne Künstlerprofil an.
func (u *Uploader) CreatePlainUsers(ctx context.Context, count int) ([]PlainUser, error) {
	stats := u.report.Stage(StageUsers)
	users := make([]PlainUser, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return users, err
		}
		first, last, username := u.text.Person(i)
		stats.Attempted++
		id, err := u.platform.CreateUser(ctx, models.TargetUser{
			Username: username,
			Nickname: first + " " + last,
			Email:    fmt.Sprintf("%s@%s", username, u.normalizer.opts.EmailDomain),
			Role:     models.RoleUser,
		})
		if err != nil {
			u.logger.Warn("User konnte nicht angelegt werden", zap.String("username", username), zap.Error(err))
			u.report.issue(StageUsers, models.EntityUser, username, err)
			continue
		}
		u.resolver.Bind(models.EntityUser, username, id)
		u.report.created(StageUsers, models.EntityUser)
		users = append(users, PlainUser{ID: id, Name: first, Surname: last})
	}
	return users, nil
}

// CreatePosts legt count generierte Posts an, jeweils mit 1-2 zufälligen Künstlern als Koautoren.
func (u *Uploader) CreatePosts(ctx context.Context, count int) error {
	stats := u.report.Stage(StagePosts)
	artists := u.resolver.TargetIDs(models.EntityArtist)
	if len(artists) == 0 {
		if count > 0 {
			u.logger.Warn("Keine Künstler vorhanden, Posts werden nicht angelegt", zap.Int("requested", count))
			stats.Skipped += count
		}
		return nil
	}

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := fmt.Sprintf("post-%d", i)
		stats.Attempted++
		id, err := u.platform.CreatePublication(ctx, models.TargetPublication{
			Kind:  models.KindPostPublication,
			Title: u.text.Title(),
			Post:  &models.PostAttributes{Body: u.text.Body()},
		})
		if err != nil {
			u.logger.Warn("Post konnte nicht angelegt werden", zap.String("post", key), zap.Error(err))
			u.report.issue(StagePosts, models.EntityPost, key, err)
			continue
		}
		u.resolver.Bind(models.EntityPost, key, id)
		u.report.created(StagePosts, models.EntityPost)

		k := 1 + u.rng.Intn(2)
		u.link(ctx, id, sample(u.rng, artists, k), models.RoleCoauthor)
	}
	return nil
}

func (u *Uploader) link(ctx context.Context, pubID string, userIDs []string, role models.CreationRole) {
	stats := u.report.Stage(StageLinks)
	for _, uid := range userIDs {
		stats.Attempted++
		err := u.platform.CreateCreationLink(ctx, models.CreationLink{UserID: uid, PublicationID: pubID, Role: role})
		if err != nil {
			stats.Failed++
			u.logger.Warn("Verknüpfung fehlgeschlagen",
				zap.String("publication_id", pubID),
				zap.String("user_id", uid),
				zap.String("role", string(role)),
				zap.Error(err))
			continue
		}
		stats.Created++
	}
}

func (u *Uploader) resolvedAuthors(aw models.SourceArtwork) []string {
	var ids []string
	for _, a := range aw.Artists {
		if id, ok := u.resolver.Resolve(models.EntityArtist, a.ID); ok {
			ids = appendUnique(ids, id)
		}
	}
	return ids
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
