package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// ValidityWindow is the closed interval of instants for which a compiled artifact
// may be used. A zero Earliest or Latest means the window is unbounded on that side.
type ValidityWindow struct {
	Earliest time.Time
	Latest   time.Time
}

// Unbounded returns a window valid for all time.
func Unbounded() ValidityWindow {
	return ValidityWindow{}
}

// NewValidityWindow creates a window, rejecting one whose earliest bound is after its latest bound.
func NewValidityWindow(earliest, latest time.Time) (ValidityWindow, error) {
	w := ValidityWindow{Earliest: earliest, Latest: latest}
	if w.HasEarliest() && w.HasLatest() && earliest.After(latest) {
		return ValidityWindow{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidValidityWindow, "cannot build validity window"), "earliest", earliest),
			"latest", latest,
		)
	}
	return w, nil
}

// HasEarliest reports whether the window has a lower bound.
func (w ValidityWindow) HasEarliest() bool {
	return !w.Earliest.IsZero()
}

// HasLatest reports whether the window has an upper bound.
func (w ValidityWindow) HasLatest() bool {
	return !w.Latest.IsZero()
}

// Covers reports whether t lies inside the window. Both bounds are inclusive.
func (w ValidityWindow) Covers(t time.Time) bool {
	return w.ValidUntil(t) && w.ValidSince(t)
}

// ValidUntil reports whether an artifact compiled earlier is still usable moving
// forward to t: the window has no upper bound or its upper bound is not before t.
func (w ValidityWindow) ValidUntil(t time.Time) bool {
	return !w.HasLatest() || !w.Latest.Before(t)
}

// ValidSince reports whether an artifact compiled later is already usable looking
// back to t: the window has no lower bound or its lower bound is not after t.
func (w ValidityWindow) ValidSince(t time.Time) bool {
	return !w.HasEarliest() || !w.Earliest.After(t)
}

// Intersect narrows the window to the bounds shared with other.
func (w ValidityWindow) Intersect(other ValidityWindow) ValidityWindow {
	out := w
	if other.HasEarliest() && (!out.HasEarliest() || other.Earliest.After(out.Earliest)) {
		out.Earliest = other.Earliest
	}
	if other.HasLatest() && (!out.HasLatest() || other.Latest.Before(out.Latest)) {
		out.Latest = other.Latest
	}
	return out
}

// String renders the window as [earliest, latest] with "-inf"/"+inf" for open sides.
func (w ValidityWindow) String() string {
	lo, hi := "-inf", "+inf"
	if w.HasEarliest() {
		lo = w.Earliest.UTC().Format(time.RFC3339)
	}
	if w.HasLatest() {
		hi = w.Latest.UTC().Format(time.RFC3339)
	}
	return "[" + lo + ", " + hi + "]"
}
