package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"art-seeder/config"
	"art-seeder/models"
	"art-seeder/providers"
)

// ErrAuth: Katalog oder Zielplattform haben die Anmeldung abgelehnt. Der Lauf bricht ab.
var ErrAuth = errors.New("authentifizierung fehlgeschlagen")

// ReportSink speichert den Bericht eines abgeschlossenen Laufs (Datenbank, S3).
type ReportSink interface {
	SaveReport(ctx context.Context, report *Report) error
}

// MigrationOptions bestimmen den Umfang eines Laufs. Alle Mengen sind Obergrenzen.
type MigrationOptions struct {
	ArtworkCount       int
	EventCount         int
	EventStatus        string
	PostCount          int
	UserCount          int
	CollabRequestCount int
	BatchSize          int
	Seed               int64 // 0 = zufällig
}

// OptionsFromConfig übernimmt die Mengenangaben aus der Konfiguration.
func OptionsFromConfig(cfg *config.Config) MigrationOptions {
	return MigrationOptions{
		ArtworkCount:       cfg.ArtworkCount,
		EventCount:         cfg.EventCount,
		EventStatus:        cfg.EventStatus,
		PostCount:          cfg.PostCount,
		UserCount:          cfg.UserCount,
		CollabRequestCount: cfg.CollabRequestCount,
		BatchSize:          cfg.BatchSize,
		Seed:               cfg.Seed,
	}
}

// MigrationService führt einen vollständigen Lauf aus: Katalog lesen, Datensätze anlegen,
// Sozialgraph erzeugen und den Bericht an alle Sinks übergeben.
type MigrationService struct {
	Catalog    providers.Catalog
	Platform   Platform
	Normalizer *FieldNormalizer
	Sinks      []ReportSink
	Logger     *zap.Logger
	Options    MigrationOptions

	now func() time.Time
}

func NewMigrationService(catalog providers.Catalog, platform Platform, normalizer *FieldNormalizer, opts MigrationOptions, logger *zap.Logger, sinks ...ReportSink) *MigrationService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	return &MigrationService{
		Catalog:    catalog,
		Platform:   platform,
		Normalizer: normalizer,
		Sinks:      sinks,
		Logger:     logger,
		Options:    opts,
		now:        time.Now,
	}
}

// Run führt einen Lauf aus. Auch bei Fehlern oder Abbruch wird der bis dahin erstellte Bericht geliefert.
func (s *MigrationService) Run(ctx context.Context) (*Report, error) {
	return s.RunWithID(ctx, uuid.NewString())
}

// RunWithID ist Run mit vorgegebener Lauf-ID (z.B. bereits an den Aufrufer gemeldet).
func (s *MigrationService) RunWithID(ctx context.Context, runID string) (*Report, error) {
	report := newReport(runID, s.now().UTC())
	log := s.Logger.With(zap.String("run_id", report.RunID))
	log.Info("Migrationslauf gestartet", zap.String("catalog", s.Catalog.Name()))

	err := s.run(ctx, report, log)
	s.finish(ctx, report, err, log)
	return report, err
}

func (s *MigrationService) run(ctx context.Context, report *Report, log *zap.Logger) error {
	seed := s.Options.Seed
	if seed == 0 {
		seed = s.now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	text := NewTextGenerator(rng.Int63())
	resolver := NewResolver()
	uploader := NewUploader(s.Platform, resolver, s.Normalizer, text, rng, report, log)
	graph := NewGraphGenerator(rng, text, s.now)

	// 1. Anmeldung
	if err := s.Catalog.Authenticate(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAuth, s.Catalog.Name(), err)
	}
	if err := s.Platform.Login(ctx); err != nil {
		return fmt.Errorf("%w: zielplattform: %w", ErrAuth, err)
	}

	// 2. Katalog lesen
	artworks, err := s.Catalog.FetchArtworks(ctx, s.Options.ArtworkCount)
	if err != nil {
		return fmt.Errorf("werke laden: %w", err)
	}
	for i := range artworks {
		if len(artworks[i].Artists) > 0 {
			continue
		}
		artists, err := s.Catalog.FetchArtistsFor(ctx, artworks[i])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("Künstler eines Werks konnten nicht geladen werden",
				zap.String("artwork_id", artworks[i].ID), zap.Error(err))
			continue
		}
		artworks[i].Artists = artists
	}
	events, err := s.Catalog.FetchEvents(ctx, s.Options.EventCount, s.Options.EventStatus)
	if err != nil {
		return fmt.Errorf("ausstellungen laden: %w", err)
	}

	// 3. Upload in Abhängigkeitsreihenfolge
	for _, aw := range artworks {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = uploader.UploadArtwork(ctx, aw)
	}
	s.logStage(log, report, StageArtworks)

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := uploader.UploadEvent(ctx, ev); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	s.logStage(log, report, StageArtists)
	s.logStage(log, report, StageEvents)

	plainUsers, err := uploader.CreatePlainUsers(ctx, s.Options.UserCount)
	if err != nil {
		return err
	}
	s.logStage(log, report, StageUsers)

	if err := uploader.CreatePosts(ctx, s.Options.PostCount); err != nil {
		return err
	}
	s.logStage(log, report, StagePosts)
	s.logStage(log, report, StageLinks)

	// 4. Sozialgraph
	artists := resolver.TargetIDs(models.EntityArtist)
	userIDs := make([]string, 0, len(plainUsers))
	for _, u := range plainUsers {
		userIDs = append(userIDs, u.ID)
	}
	accounts := union(artists, userIDs)
	publications := union(
		resolver.TargetIDs(models.EntityArtwork),
		resolver.TargetIDs(models.EntityEvent),
		resolver.TargetIDs(models.EntityPost),
	)

	edgeStages := []struct {
		stage  Stage
		kind   models.EdgeKind
		edges  []models.SocialEdge
		submit func(context.Context, []models.SocialEdge) error
	}{
		{StageFollows, models.EdgeFollow, graph.Follows(artists, userIDs), s.Platform.BulkSetFollows},
		{StageLikes, models.EdgeLike, graph.Likes(accounts, publications), s.Platform.BulkCreateLikes},
		{StageComments, models.EdgeComment, graph.Comments(accounts, publications), s.Platform.BulkCreateComments},
	}
	for _, es := range edgeStages {
		if err := s.submitEdges(ctx, report, log, es.stage, es.kind, es.edges, es.submit); err != nil {
			return err
		}
	}

	collab := report.Stage(StageCollabRequests)
	for _, req := range graph.CollabRequests(artists, s.Options.CollabRequestCount) {
		if err := ctx.Err(); err != nil {
			return err
		}
		collab.Attempted++
		if err := s.Platform.CreateCollabRequest(ctx, req); err != nil {
			collab.Failed++
			log.Warn("Kollaborationsanfrage fehlgeschlagen", zap.String("sender_id", req.SenderID), zap.Error(err))
			continue
		}
		collab.Created++
	}
	s.logStage(log, report, StageCollabRequests)

	upgrades := report.Stage(StageUpgradeRequests)
	for _, req := range graph.UpgradeRequests(plainUsers) {
		if err := ctx.Err(); err != nil {
			return err
		}
		upgrades.Attempted++
		if err := s.Platform.CreateUpgradeRequest(ctx, req); err != nil {
			upgrades.Failed++
			log.Warn("Upgrade-Antrag fehlgeschlagen", zap.String("user_id", req.UserID), zap.Error(err))
			continue
		}
		upgrades.Created++
	}
	s.logStage(log, report, StageUpgradeRequests)
	return nil
}

// submitEdges übermittelt Kanten in Blöcken von BatchSize. Ein fehlgeschlagener Block bricht die Stufe nicht ab.
func (s *MigrationService) submitEdges(ctx context.Context, report *Report, log *zap.Logger, stage Stage, kind models.EdgeKind,
	edges []models.SocialEdge, submit func(context.Context, []models.SocialEdge) error) error {
	stats := report.Stage(stage)
	for start := 0; start < len(edges); start += s.Options.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.Options.BatchSize, len(edges))
		batch := edges[start:end]
		stats.Attempted += len(batch)
		if err := submit(ctx, batch); err != nil {
			stats.Failed += len(batch)
			log.Error("Block konnte nicht übermittelt werden",
				zap.String("stage", string(stage)),
				zap.Int("offset", start),
				zap.Int("size", len(batch)),
				zap.Error(err))
			continue
		}
		stats.Created += len(batch)
		edgesCounter.WithLabelValues(string(kind)).Add(float64(len(batch)))
	}
	s.logStage(log, report, stage)
	return nil
}

func (s *MigrationService) logStage(log *zap.Logger, report *Report, stage Stage) {
	st := report.Stage(stage)
	log.Info("Stufe abgeschlossen",
		zap.String("stage", string(stage)),
		zap.Int("attempted", st.Attempted),
		zap.Int("created", st.Created),
		zap.Int("reused", st.Reused),
		zap.Int("skipped", st.Skipped),
		zap.Int("failed", st.Failed))
}

// finish setzt Status und Endzeit und reicht den Bericht an die Sinks weiter.
// Sink-Fehler werden nur geloggt.
func (s *MigrationService) finish(ctx context.Context, report *Report, err error, log *zap.Logger) {
	report.FinishedAt = s.now().UTC()
	switch {
	case err == nil:
		report.Status = RunSucceeded
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		report.Status = RunCancelled
		report.Error = err.Error()
	default:
		report.Status = RunFailed
		report.Error = err.Error()
	}
	runsCounter.WithLabelValues(report.Status).Inc()

	fields := []zap.Field{
		zap.String("status", report.Status),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		zap.Int("issues", len(report.Issues)),
	}
	if err != nil {
		log.Error("Migrationslauf beendet", append(fields, zap.Error(err))...)
	} else {
		log.Info("Migrationslauf beendet", fields...)
	}

	// Auch abgebrochene Läufe werden gespeichert
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	for _, sink := range s.Sinks {
		if err := sink.SaveReport(sinkCtx, report); err != nil {
			log.Error("Bericht konnte nicht gespeichert werden", zap.Error(err))
		}
	}
}
