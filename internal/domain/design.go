package domain

import "fmt"

// Platform identifies an external 3D-printing site a design is listed on.
type Platform string

const (
	PlatformThingiverse Platform = "Thingiverse"
	PlatformCults       Platform = "Cults3d"
	PlatformPrintables  Platform = "Printable"
)

// Platforms lists all recognized platforms in stable order.
var Platforms = []Platform{PlatformThingiverse, PlatformCults, PlatformPrintables}

// ParsePlatform validates a platform name coming from CLI flags or files.
func ParsePlatform(value string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == value {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", value)
}

// Design is a tracked creative work, unique by title. Created on first import
// and immutable afterwards.
type Design struct {
	ID    int64
	Title string
}

// DesignSource binds a design to one external platform listing. Inactive
// sources keep their history but are excluded from future ingestion runs.
type DesignSource struct {
	DesignID   int64
	Title      string
	Platform   Platform
	ExternalID string
	Inactive   bool
}
