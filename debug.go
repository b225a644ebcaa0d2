package showcase

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// debugStats holds per-update timing metrics.
// Only populated when the viewer is in debug mode.
type debugStats struct {
	inputTime   time.Duration
	tickTime    time.Duration
	pending     int
	surfaces    int
	injected    bool
	transition  Transition
	trackOffset float64
}

// newDefaultLogger returns the logger a Viewer uses until SetLogger is
// called: warnings and above on stderr.
func newDefaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "showcase",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.WarnLevel,
	})
}

// debugLog prints timing and engine stats at debug level.
func (v *Viewer) debugLog(stats debugStats) {
	if !v.debug {
		return
	}
	v.logger.Debug("update",
		"input", stats.inputTime,
		"tick", stats.tickTime,
		"total", stats.inputTime+stats.tickTime,
		"pending", stats.pending,
		"surfaces", stats.surfaces,
		"injected", stats.injected,
		"transition", stats.transition,
		"track", stats.trackOffset,
	)
}

// debugCheckSurfaces warns when more surfaces are alive than the
// materialization window allows.
func (v *Viewer) debugCheckSurfaces() {
	if !v.debug || v.catalog == nil {
		return
	}
	window := max(v.cfg.PreloadRange, v.cfg.VisibleItems)
	limit := 2*window + 2 // window on both sides, current, pending target
	if n := len(v.surfaces); n > limit {
		v.logger.Warn("surface count exceeds window", "surfaces", n, "limit", limit)
	}
}
