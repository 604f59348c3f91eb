package constants

// Track identifies one of the two independent analysis pipelines.
type Track string

// Stable values (store these exact strings in run records).
const (
	TrackFinancial      Track = "FINANCIAL"
	TrackSustainability Track = "SUSTAINABILITY"
)

// AllTracks lists tracks in display order.
var AllTracks = []Track{TrackFinancial, TrackSustainability}

// Valid reports whether t is a known track.
func (t Track) Valid() bool {
	return t == TrackFinancial || t == TrackSustainability
}
