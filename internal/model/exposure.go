package model

// Constituent is one underlying instrument reported by a fund's look-through data.
// Weight is a percentage of the fund (0-100).
type Constituent struct {
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Sector  string  `json:"sector,omitempty"`
	Country string  `json:"country,omitempty"`
}

// ExposureSource is one holding's contribution to an aggregated symbol row.
type ExposureSource struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ExposureRow is one aggregated bucket. Weight is in percentage points of the
// whole portfolio. Sources is only populated for symbol-level rows.
type ExposureRow struct {
	Key     string           `json:"key"`
	Name    string           `json:"name,omitempty"`
	Weight  float64          `json:"weight"`
	Sources []ExposureSource `json:"sources,omitempty"`
}

// ExposureBreakdown is the ranked look-through aggregation of a portfolio.
type ExposureBreakdown struct {
	TopExposures    []ExposureRow `json:"topExposures"`
	SectorExposure  []ExposureRow `json:"sectorExposure"`
	CountryExposure []ExposureRow `json:"countryExposure"`
}
