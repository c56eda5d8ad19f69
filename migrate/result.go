package migrate

import "github.com/google/uuid"

// Outcome describes what happened to one source table.
type Outcome string

const (
	// OutcomeMigrated means the table committed on the target. Empty
	// source tables migrate with zero rows.
	OutcomeMigrated Outcome = "migrated"
	// OutcomeSkipped means the source table has no counterpart in the
	// target schema and was passed over.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the table's transaction rolled back; the target
	// database holds none of its rows from this run.
	OutcomeFailed Outcome = "failed"
)

// TableResult records the outcome of one source table.
type TableResult struct {
	Table   string
	Rows    int
	Outcome Outcome
	// Err carries the failure for OutcomeFailed results.
	Err error
}

// Summary aggregates one migration run.
type Summary struct {
	RunID          uuid.UUID
	Database       string
	SourcePath     string
	Tables         []TableResult
	MigratedTables int
}

// Failed returns the results that rolled back.
func (s *Summary) Failed() []TableResult {
	return s.filter(OutcomeFailed)
}

// Skipped returns the results passed over for missing target tables.
func (s *Summary) Skipped() []TableResult {
	return s.filter(OutcomeSkipped)
}

func (s *Summary) filter(o Outcome) []TableResult {
	var out []TableResult
	for _, r := range s.Tables {
		if r.Outcome == o {
			out = append(out, r)
		}
	}
	return out
}
