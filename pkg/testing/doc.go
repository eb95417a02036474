// Package testing provides a harness for exercising widget trees without a
// real host application.
//
// # Quick Start
//
// Create a tester, pump a configuration, and make assertions:
//
//	func TestGroceries(t *testing.T) {
//	    tester := wktest.NewWidgetTesterWithT(t)
//	    tester.PumpConfig([]byte(`{"small":{"type":"list","items":[
//	        {"text":"Milk","checked":false,"action":"milk"}]}}`))
//
//	    // Find nodes of the resolved plan
//	    row := tester.Find(wktest.ByText("Milk")).First()
//
//	    // Tap it like the owning application would
//	    tester.Tap(wktest.ByAction("milk"))
//	    tester.Pump()
//
//	    if got := tester.Drain(); len(got) != 1 {
//	        t.Errorf("expected one queued action, got %d", len(got))
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare plan snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/groceries.snapshot.json")
//
// Update snapshots with:
//
//	WIDGETKIT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Time
//
// Date and timer elements read the tester's clock:
//
//	tester.Clock().Advance(time.Minute)
//	tester.Pump()
package testing
