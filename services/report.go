package services

import (
	"errors"
	"time"

	"art-seeder/models"
)

// Stage bezeichnet eine Stufe des Migrationslaufs.
type Stage string

const (
	StageArtists         Stage = "artists"
	StageArtworks        Stage = "artworks"
	StageEvents          Stage = "events"
	StageLinks           Stage = "creation_links"
	StageUsers           Stage = "users"
	StagePosts           Stage = "posts"
	StageFollows         Stage = "follows"
	StageLikes           Stage = "likes"
	StageComments        Stage = "comments"
	StageCollabRequests  Stage = "collab_requests"
	StageUpgradeRequests Stage = "upgrade_requests"
)

// Laufstatus
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// Ergebnis eines einzelnen Datensatzes
const (
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// StageStats zählt den Fortschritt einer Stufe.
type StageStats struct {
	Attempted int `json:"attempted"`
	Created   int `json:"created"`
	Reused    int `json:"reused"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Issue ist ein übersprungener oder fehlgeschlagener Quelldatensatz.
type Issue struct {
	Kind     models.EntityKind `json:"kind"`
	SourceID string            `json:"source_id"`
	Outcome  string            `json:"outcome"`
	Reason   string            `json:"reason"`
}

// Report fasst einen Migrationslauf zusammen.
type Report struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	Stages     map[Stage]*StageStats `json:"stages"`
	Issues     []Issue               `json:"issues"`
}

func newReport(runID string, startedAt time.Time) *Report {
	return &Report{
		RunID:     runID,
		StartedAt: startedAt,
		Stages:    make(map[Stage]*StageStats),
		Issues:    []Issue{},
	}
}

// Stage liefert die Zähler einer Stufe und legt sie bei Bedarf an.
func (r *Report) Stage(s Stage) *StageStats {
	st, ok := r.Stages[s]
	if !ok {
		st = &StageStats{}
		r.Stages[s] = st
	}
	return st
}

func (r *Report) created(s Stage, kind models.EntityKind) {
	r.Stage(s).Created++
	recordsCounter.WithLabelValues(string(kind), "created").Inc()
}

func (r *Report) reused(s Stage, kind models.EntityKind) {
	r.Stage(s).Reused++
	recordsCounter.WithLabelValues(string(kind), "reused").Inc()
}

// issue verbucht einen Fehler als übersprungen oder fehlgeschlagen. Übersprungen ist nur,
// wer selbst an einer Qualitätsregel scheitert, nicht wer von einem übersprungenen Datensatz abhängt.
func (r *Report) issue(s Stage, kind models.EntityKind, sourceID string, err error) {
	outcome := OutcomeFailed
	var se *SkipError
	if errors.As(err, &se) && se.Kind == kind && se.SourceID == sourceID {
		outcome = OutcomeSkipped
		r.Stage(s).Skipped++
	} else {
		r.Stage(s).Failed++
	}
	r.Issues = append(r.Issues, Issue{Kind: kind, SourceID: sourceID, Outcome: outcome, Reason: err.Error()})
	recordsCounter.WithLabelValues(string(kind), outcome).Inc()
}

// Created liefert die Anzahl angelegter Datensätze einer Stufe.
func (r *Report) Created(s Stage) int {
	if st, ok := r.Stages[s]; ok {
		return st.Created
	}
	return 0
}
