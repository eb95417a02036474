package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingT captures MatchesFile failures instead of failing the test.
type recordingT struct {
	fatals []string
	errors []string
}

func (r *recordingT) Helper()      {}
func (r *recordingT) Name() string { return "TestRecording" }

func (r *recordingT) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestCaptureSnapshot_Tree(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	snap := tester.CaptureSnapshot()
	assert.Equal(t, "small", snap.Family)
	assert.Equal(t, [2]float64{158, 158}, snap.Size)
	require.NotNil(t, snap.Tree)

	var rows []*PlanNode
	var walk func(*PlanNode)
	walk = func(n *PlanNode) {
		if n.Kind == "listRow" {
			rows = append(rows, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(snap.Tree)
	require.Len(t, rows, 2)
	assert.Equal(t, "listRow#0", rows[0].ID)
	assert.Equal(t, "listRow#1", rows[1].ID)
	assert.Equal(t, "Eggs", rows[1].Text)
	assert.Equal(t, "milk", rows[0].Action)

	var texts []string
	for _, op := range snap.DisplayOps {
		if op.Op == "drawText" {
			texts = append(texts, op.Params["text"].(string))
		}
	}
	assert.Contains(t, texts, "Eggs")
}

func TestCaptureSnapshot_NilPlan(t *testing.T) {
	snap := Capture(nil)
	assert.Nil(t, snap.Tree)
	assert.Empty(t, snap.DisplayOps)
}

func TestSnapshot_DiffAfterTap(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	before := tester.CaptureSnapshot()
	assert.Empty(t, before.Diff(tester.CaptureSnapshot()))

	require.NoError(t, tester.Tap(ByAction("milk")))
	diff := tester.CaptureSnapshot().Diff(before)
	assert.Contains(t, diff, "--- expected\n+++ actual\n")
	assert.Contains(t, diff, `"checked": true`)
}

func TestSnapshot_FileRoundTrip(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "")
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	snap := tester.CaptureSnapshot()

	path := filepath.Join(t.TempDir(), "golden", "groceries.snapshot.json")
	rec := &recordingT{}
	snap.MatchesFile(rec, path)
	require.Len(t, rec.fatals, 1)
	assert.Contains(t, rec.fatals[0], "snapshot file missing")

	require.NoError(t, snap.UpdateFile(path))
	rec = &recordingT{}
	snap.MatchesFile(rec, path)
	assert.Empty(t, rec.fatals)
	assert.Empty(t, rec.errors)

	require.NoError(t, tester.Tap(ByAction("milk")))
	rec = &recordingT{}
	tester.CaptureSnapshot().MatchesFile(rec, path)
	require.Len(t, rec.errors, 1)
	assert.Contains(t, rec.errors[0], "snapshot mismatch")
}

func TestSnapshot_UpdateEnv(t *testing.T) {
	t.Setenv(UpdateSnapshotsEnv, "1")
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	path := filepath.Join(t.TempDir(), "groceries.snapshot.json")
	rec := &recordingT{}
	tester.CaptureSnapshot().MatchesFile(rec, path)
	assert.Empty(t, rec.fatals)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
