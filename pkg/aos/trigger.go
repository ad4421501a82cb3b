package aos

// TriggerBand is the fraction of the viewport height, measured up from the
// bottom edge, that an anchor must reach before it counts as in view.
const TriggerBand = 0.2

// IsInZone reports whether the anchor described by s overlaps the trigger
// zone at the given scroll offset. The zone runs from the top of the viewport
// down to TriggerBand above its bottom; touching an edge is not overlap.
func IsInZone(s Snapshot, scrollY float64) bool {
	offset := s.AnchorTop - scrollY
	band := s.ViewportHeight * TriggerBand
	return offset < s.ViewportHeight-band && offset+s.AnchorHeight > band
}
