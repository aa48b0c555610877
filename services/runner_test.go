package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingCatalog hält die Anmeldung an, bis release geschlossen wird.
type blockingCatalog struct {
	fakeCatalog
	started chan struct{}
	release chan struct{}
}

func (c *blockingCatalog) Authenticate(ctx context.Context) error {
	close(c.started)
	<-c.release
	return nil
}

func TestRunner_OneRunAtATime(t *testing.T) {
	c := &blockingCatalog{started: make(chan struct{}), release: make(chan struct{})}
	svc := newTestService(&c.fakeCatalog, &fakePlatform{}, MigrationOptions{Seed: 1})
	svc.Catalog = c
	r := NewRunner(svc, zap.NewNop())

	id, err := r.Start(context.Background())
	require.NoError(t, err)
	<-c.started

	active, ok := r.Active()
	assert.True(t, ok)
	assert.Equal(t, id, active)

	_, err = r.Start(context.Background())
	assert.ErrorIs(t, err, ErrRunActive)
	_, err = r.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunActive)

	close(c.release)
	r.Wait()

	_, ok = r.Active()
	assert.False(t, ok)
	rep, ok := r.Report(id)
	require.True(t, ok)
	assert.Equal(t, RunSucceeded, rep.Status)
}

func TestRunner_RecentNewestFirst(t *testing.T) {
	svc := newTestService(&fakeCatalog{}, &fakePlatform{}, MigrationOptions{Seed: 1})
	r := NewRunner(svc, zap.NewNop())

	var ids []string
	for i := 0; i < recentReports+3; i++ {
		rep, err := r.RunNow(context.Background())
		require.NoError(t, err)
		ids = append(ids, rep.RunID)
	}

	recent := r.Recent()
	require.Len(t, recent, recentReports)
	assert.Equal(t, ids[len(ids)-1], recent[0].RunID)
	_, ok := r.Report(ids[0])
	assert.False(t, ok)
}
