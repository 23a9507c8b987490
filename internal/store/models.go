package store

import "time"

// Project is one caption project: an uploaded source asset, its owner
// credential, and an optional burned output reference.
type Project struct {
	ID          string
	OwnerKey    string
	OriginalURI string
	BurnedURI   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Segment is one timed caption entry belonging to a project. Seq is the
// engine- or caller-assigned ordinal id, unique within the project but not
// necessarily contiguous.
type Segment struct {
	ProjectID string
	Seq       int64
	Start     float64
	End       float64
	Text      string
}
