package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/widgetkit/pkg/layout"
)

// UpdateSnapshotsEnv rewrites golden files instead of comparing when set
// to 1.
const UpdateSnapshotsEnv = "WIDGETKIT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures a resolved plan and the drawing operations it paints.
type Snapshot struct {
	Family      string         `json:"family"`
	Resolved    string         `json:"resolved"`
	Size        [2]float64     `json:"size"`
	Placeholder string         `json:"placeholder,omitempty"`
	Truncations []TruncationOp `json:"truncations,omitempty"`
	Tree        *PlanNode      `json:"tree,omitempty"`
	DisplayOps  []DisplayOp    `json:"displayOps,omitempty"`
}

// TruncationOp is a serialized capacity cut.
type TruncationOp struct {
	Kind      string `json:"kind"`
	Requested int    `json:"requested"`
	Rendered  int    `json:"rendered"`
}

// PlanNode is a node of the serialized plan.
type PlanNode struct {
	ID       string      `json:"id"`
	Kind     string      `json:"kind"`
	Frame    [4]float64  `json:"frame"`
	Text     string      `json:"text,omitempty"`
	Visual   string      `json:"visual,omitempty"`
	Checked  *bool       `json:"checked,omitempty"`
	Action   string      `json:"action,omitempty"`
	Payload  string      `json:"payload,omitempty"`
	URL      string      `json:"url,omitempty"`
	Children []*PlanNode `json:"children,omitempty"`
}

var visualNames = map[layout.VisualKind]string{
	layout.VisualFill:    "fill",
	layout.VisualMeter:   "meter",
	layout.VisualDivider: "divider",
	layout.VisualChart:   "chart",
	layout.VisualCanvas:  "canvas",
	layout.VisualShape:   "shape",
	layout.VisualImage:   "image",
}

// CaptureSnapshot captures the tester's current plan.
func (t *WidgetTester) CaptureSnapshot() *Snapshot {
	return Capture(t.Plan())
}

// Capture serializes plan. A nil plan gives an empty snapshot.
func Capture(plan *layout.Plan) *Snapshot {
	snap := &Snapshot{}
	if plan == nil {
		return snap
	}
	snap.Family = plan.Family.String()
	snap.Resolved = plan.Resolved.String()
	snap.Size = [2]float64{round2(plan.Size.Width), round2(plan.Size.Height)}
	snap.Placeholder = plan.Placeholder
	for _, tr := range plan.Truncations {
		snap.Truncations = append(snap.Truncations, TruncationOp{
			Kind:      tr.Kind.String(),
			Requested: tr.Requested,
			Rendered:  tr.Rendered,
		})
	}
	if plan.Root != nil {
		snap.Tree = captureNode(plan.Root, &typeCounter{})
		snap.DisplayOps = serializePlan(plan)
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. With
// WIDGETKIT_UPDATE_SNAPSHOTS=1 the file is rewritten instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and this snapshot, or
// the empty string when they serialize identically.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// typeCounter assigns stable IDs like "text#0", "text#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(name string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[name]
	c.counts[name] = n + 1
	return fmt.Sprintf("%s#%d", name, n)
}

func nodeKind(n *layout.Node) string {
	if n.Role != layout.RoleElement || n.Element == nil {
		return n.Role.String()
	}
	return n.Element.Kind().String()
}

func captureNode(n *layout.Node, counter *typeCounter) *PlanNode {
	kind := nodeKind(n)
	f := n.Frame
	pn := &PlanNode{
		ID:      counter.next(kind),
		Kind:    kind,
		Frame:   [4]float64{round2(f.Left), round2(f.Top), round2(f.Width()), round2(f.Height())},
		Text:    Text(n),
		Visual:  visualNames[n.Visual.Kind],
		Checked: n.Checked,
		Action:  n.Action,
		Payload: n.Payload,
		URL:     n.URL,
	}
	for _, child := range n.Children {
		pn.Children = append(pn.Children, captureNode(child, counter))
	}
	return pn
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")
	for i := 0; i < max(len(expectedLines), len(actualLines)); i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}
