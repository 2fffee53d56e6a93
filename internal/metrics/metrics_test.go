package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New("Bert 01")

	r.FileDecoded("left", nil)
	r.FileDecoded("left", nil)
	r.FileDecoded("right", errors.New("truncated"))
	r.VoteFinished("left", 5, 20*time.Millisecond)
	r.HemisphereFailed("right", "load")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.filesDecoded.WithLabelValues("left", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.filesDecoded.WithLabelValues("right", OutcomeFailed)))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.verticesVoted.WithLabelValues("left")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.hemisphereFailures.WithLabelValues("right", "load")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.voteDuration))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.FileDecoded("left", nil)
	r.VoteFinished("left", 1, time.Second)
	r.HemisphereFailed("left", "vote")
	r.RunSucceeded(time.Now())
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := New("bert")
	r.FileDecoded("left", nil)
	r.RunSucceeded(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "surfvote.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `surfvote_annotation_files_total{hemisphere="left",outcome="ok",subject="bert"} 1`)
	assert.Contains(t, text, "surfvote_last_success_timestamp_seconds")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestSubjectLabelIsSanitized(t *testing.T) {
	r := New("Bert 01")
	r.FileDecoded("left", nil)

	expected := `
# HELP surfvote_annotation_files_total Annotation files processed, by hemisphere and outcome
# TYPE surfvote_annotation_files_total counter
surfvote_annotation_files_total{hemisphere="left",outcome="ok",subject="bert_01"} 1
`
	require.NoError(t, testutil.CollectAndCompare(r.filesDecoded, strings.NewReader(expected)))
}
