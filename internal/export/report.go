// Package export writes selections out as spreadsheet reports and into a
// SQLite report database.
package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/wafermap/internal/viewmodel"
)

// Report is one exported selection. The same ID is used in every artefact
// written for it.
type Report struct {
	ID        string
	Created   time.Time
	Selection *viewmodel.Selection
}

// NewReport stamps sel with a fresh ID and the current UTC time.
func NewReport(sel *viewmodel.Selection) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Created:   time.Now().UTC(),
		Selection: sel,
	}
}
