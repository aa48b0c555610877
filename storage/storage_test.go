package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"art-seeder/models"
	"art-seeder/services"
)

type memObject struct {
	body     []byte
	modified time.Time
}

// memStore ist ein In-Memory-Bucket.
type memStore struct {
	objects map[string]memObject
	clock   time.Time
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]memObject{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.clock = m.clock.Add(time.Minute)
	m.objects[aws.ToString(in.Key)] = memObject{body: b, modified: m.clock}
	return &s3.PutObjectOutput{}, nil
}

func (m *memStore) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(obj.modified)})
	}
	return out, nil
}

func (m *memStore) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memStore) keys() []string {
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func testReport(id string) *services.Report {
	return &services.Report{
		RunID:      id,
		StartedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 2, 1, 10, 5, 0, 0, time.UTC),
		Status:     services.RunSucceeded,
		Stages: map[services.Stage]*services.StageStats{
			services.StageArtworks: {Attempted: 3, Created: 2, Skipped: 1},
		},
		Issues: []services.Issue{
			{Kind: models.EntityArtwork, SourceID: "aw-9", Outcome: services.OutcomeSkipped, Reason: "kein Bild"},
		},
	}
}

func TestReportArchive_UploadsJSON(t *testing.T) {
	store := newMemStore()
	a := &ReportArchive{Client: store, Bucket: "b", Keep: 5, Logger: zap.NewNop()}

	require.NoError(t, a.SaveReport(context.Background(), testReport("run-1")))

	obj, ok := store.objects["reports/run-1.json"]
	require.True(t, ok)
	var got services.Report
	require.NoError(t, json.Unmarshal(obj.body, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 2, got.Stages[services.StageArtworks].Created)
}

func TestReportArchive_KeepsNewest(t *testing.T) {
	store := newMemStore()
	store.objects["other/keep-me.txt"] = memObject{modified: store.clock}
	a := &ReportArchive{Client: store, Bucket: "b", Keep: 2, Logger: zap.NewNop()}

	for i := 1; i <= 4; i++ {
		require.NoError(t, a.SaveReport(context.Background(), testReport(fmt.Sprintf("run-%d", i))))
	}

	assert.Equal(t, []string{"other/keep-me.txt", "reports/run-3.json", "reports/run-4.json"}, store.keys())
}

func TestReportArchive_KeepZeroKeepsAll(t *testing.T) {
	store := newMemStore()
	a := &ReportArchive{Client: store, Bucket: "b", Keep: 0, Logger: zap.NewNop()}
	for i := 1; i <= 3; i++ {
		require.NoError(t, a.SaveReport(context.Background(), testReport(fmt.Sprintf("run-%d", i))))
	}
	assert.Len(t, store.keys(), 3)
}

func TestRunFromReport(t *testing.T) {
	run, err := runFromReport(testReport("run-7"))
	require.NoError(t, err)

	assert.Equal(t, "run-7", run.ID)
	assert.Equal(t, services.RunSucceeded, run.Status)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 5*time.Minute, run.FinishedAt.Sub(run.StartedAt))

	var stats map[string]services.StageStats
	require.NoError(t, json.Unmarshal(run.Stats, &stats))
	assert.Equal(t, 1, stats["artworks"].Skipped)

	require.Len(t, run.Issues, 1)
	assert.Equal(t, "ARTWORK", run.Issues[0].Kind)
	assert.Equal(t, "run-7", run.Issues[0].RunID)
}

func TestRunFromReport_Unfinished(t *testing.T) {
	r := testReport("run-8")
	r.FinishedAt = time.Time{}
	run, err := runFromReport(r)
	require.NoError(t, err)
	assert.Nil(t, run.FinishedAt)
}
