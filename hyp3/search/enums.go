package search

// Platform represents a supported satellite platform identifier.
type Platform string

const (
	PlatformSentinel1A Platform = "S1A"
	PlatformSentinel1B Platform = "S1B"
	PlatformSentinel1C Platform = "S1C"
	PlatformALOS       Platform = "ALOS"
	PlatformRADARSAT1  Platform = "RADARSAT-1"
	PlatformRADARSAT2  Platform = "RADARSAT-2"
)

// String returns the underlying string value.
func (p Platform) String() string {
	return string(p)
}

// BeamMode represents a supported beam mode identifier.
type BeamMode string

const (
	BeamModeEW BeamMode = "EW"
	BeamModeIW BeamMode = "IW"
	BeamModeSM BeamMode = "SM"
	BeamModeWV BeamMode = "WV"
)

// String returns the underlying string value.
func (b BeamMode) String() string {
	return string(b)
}

// FlightDirection enumerates valid flight direction filters.
type FlightDirection string

const (
	FlightDirectionAscending  FlightDirection = "ASCENDING"
	FlightDirectionDescending FlightDirection = "DESCENDING"
)

// String returns the underlying string value.
func (f FlightDirection) String() string {
	return string(f)
}
