package showcase

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a gesture script.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	DX       float64 `json:"dx,omitempty"`
	DY       float64 `json:"dy,omitempty"`
	Ctrl     bool    `json:"ctrl,omitempty"`
	Frames   int     `json:"frames,omitempty"`
	Index    int     `json:"index,omitempty"`
	Category string  `json:"category,omitempty"`
	On       bool    `json:"on,omitempty"`
}

// testScript is the top-level JSON structure for a gesture script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"screenshot": true, "click": true, "drag": true, "wait": true,
	"wheel": true, "next": true, "prev": true, "jump": true,
	"category": true, "zoom-in": true, "zoom-out": true, "reset-zoom": true,
	"extend": true, "hotspots": true, "gallery": true,
}

// TestRunner sequences injected input, navigation commands, and
// screenshots across frames for automated testing. Attach to a Viewer via
// SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadTestScript parses a JSON gesture script and returns a TestRunner
// ready to be attached to a Viewer via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the viewer. The runner's step
// method is called from Viewer.Update before input is processed each frame.
func (v *Viewer) SetTestRunner(runner *TestRunner) {
	v.testRunner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errs returns the errors returned by steps so far, such as a jump to an
// index outside the catalog.
func (r *TestRunner) Errs() []error {
	return r.errs
}

// step advances the runner by one frame. Called from Viewer.Update.
func (r *TestRunner) step(v *Viewer) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(v.injectQueue) > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "click":
		v.InjectClick(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		var mods KeyModifiers
		if st.Ctrl {
			mods = ModCtrl
		}
		v.InjectWheel(st.DX, st.DY, st.X, st.Y, mods)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "next":
		v.Next()
	case "prev":
		v.Prev()
	case "jump":
		err = v.JumpTo(st.Index)
	case "category":
		err = v.SelectCategory(st.Category)
	case "zoom-in":
		v.ZoomIn()
	case "zoom-out":
		v.ZoomOut()
	case "reset-zoom":
		v.ResetZoom()
	case "extend":
		v.SetExtendMode(st.On)
	case "hotspots":
		v.SetHotspotsVisible(st.On)
	case "gallery":
		v.SetGalleryOpen(st.On)
	}
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("step %d (%s): %w", r.cursor-1, st.Action, err))
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(v.injectQueue) == 0 {
		r.done = true
	}
}
