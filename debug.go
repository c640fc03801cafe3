package maskedit

import "time"

// debugStats holds stroke and composite metrics for a session.
// Only populated when Session.debug is true.
type debugStats struct {
	strokes       int
	stamps        int
	redraws       int
	compositeTime time.Duration
}

// debugLogStroke logs one finished stroke.
func (s *Session) debugLogStroke(e Event) {
	Logger().Debug("stroke",
		"layer", e.Layer, "stamps", e.Stamps, "dirty", e.Dirty,
		"mode", s.brush.Mode, "diameter", s.brush.Diameter)
}

// debugLogSummary logs totals for the session.
func (s *Session) debugLogSummary() {
	var avg time.Duration
	if s.stats.redraws > 0 {
		avg = s.stats.compositeTime / time.Duration(s.stats.redraws)
	}
	Logger().Debug("session stats",
		"strokes", s.stats.strokes, "stamps", s.stats.stamps,
		"redraws", s.stats.redraws, "composite_avg", avg)
}
