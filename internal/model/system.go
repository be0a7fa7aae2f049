package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string `json:"appVersion"`
	DbVersion  int64  `json:"dbVersion"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	CachedQuotes int    `json:"cachedQuotes"`
}
