package search

// Response mirrors the fields returned by the ASF search endpoint for
// jsonlite output.
type Response struct {
	Results []Result `json:"results"`
}

// Result represents an individual scene/granule returned from the search API.
type Result struct {
	GranuleName     string  `json:"granuleName"`
	ProductID       string  `json:"productID"`
	Platform        string  `json:"platform"`
	BeamMode        string  `json:"beamMode"`
	Polarization    string  `json:"polarization"`
	ProcessingLevel string  `json:"processingLevel"`
	FlightDirection string  `json:"flightDirection"`
	Path            int     `json:"path"`
	Frame           int     `json:"frame"`
	StartTime       string  `json:"startTime"`
	StopTime        string  `json:"stopTime"`
	SizeMB          float64 `json:"sizeMB"`
	DownloadURL     string  `json:"downloadUrl"`
	FileName        string  `json:"fileName"`
	WKT             string  `json:"wkt"`
}
