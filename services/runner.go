package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRunActive: es läuft bereits eine Migration.
var ErrRunActive = errors.New("es läuft bereits ein Migrationslauf")

// recentReports ist die Anzahl der im Speicher gehaltenen Berichte.
const recentReports = 20

// Runner stellt sicher, dass höchstens ein Lauf gleichzeitig aktiv ist (HTTP-Trigger und Cron).
type Runner struct {
	service *MigrationService
	logger  *zap.Logger

	mu      sync.Mutex
	active  string
	reports []*Report
	wg      sync.WaitGroup
}

func NewRunner(service *MigrationService, logger *zap.Logger) *Runner {
	return &Runner{service: service, logger: logger}
}

// Start startet einen Lauf im Hintergrund und gibt dessen ID zurück.
func (r *Runner) Start(ctx context.Context) (string, error) {
	id, err := r.acquire()
	if err != nil {
		return "", err
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx, id)
	}()
	return id, nil
}

// RunNow führt einen Lauf synchron aus.
func (r *Runner) RunNow(ctx context.Context) (*Report, error) {
	id, err := r.acquire()
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, id)
}

// Active liefert die ID des laufenden Laufs, falls vorhanden.
func (r *Runner) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != ""
}

// Recent liefert die zuletzt abgeschlossenen Berichte, neueste zuerst.
func (r *Runner) Recent() []*Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Report, 0, len(r.reports))
	for i := len(r.reports) - 1; i >= 0; i-- {
		out = append(out, r.reports[i])
	}
	return out
}

// Report sucht einen abgeschlossenen Bericht im Speicher.
func (r *Runner) Report(id string) (*Report, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.RunID == id {
			return rep, true
		}
	}
	return nil, false
}

// Wait blockiert, bis alle Hintergrundläufe beendet sind.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) acquire() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != "" {
		return "", ErrRunActive
	}
	r.active = uuid.NewString()
	return r.active, nil
}

func (r *Runner) execute(ctx context.Context, id string) (*Report, error) {
	report, err := r.service.RunWithID(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = ""
	r.reports = append(r.reports, report)
	if len(r.reports) > recentReports {
		r.reports = r.reports[len(r.reports)-recentReports:]
	}
	if err != nil {
		r.logger.Warn("Lauf mit Fehler beendet", zap.String("run_id", id), zap.Error(err))
	}
	return report, err
}
