package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/symposium/internal/store/sqlite"
)

// StoreCheck opens the forum database and scans for orphaned rows.
// If fix is true, orphaned rows are deleted.
type StoreCheck struct {
	path string
	fix  bool
}

// NewStoreCheck creates a new database check for the given database file.
func NewStoreCheck(path string, fix bool) *StoreCheck {
	return &StoreCheck{path: path, fix: fix}
}

func (c *StoreCheck) Name() string {
	return "Forum Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Database",
			Status: StatusPass,
			Detail: "no database yet; created on first use",
		})
		return result
	}

	store, err := sqlite.Open(c.path)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Open database",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	defer func() { _ = store.Close() }()

	forums, err := store.ListForums(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "List forums",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Database reachable",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d forum(s)", len(forums)),
	})

	report, err := store.Integrity(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Integrity scan",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	if report.Clean() {
		result.Items = append(result.Items, CheckItem{
			Label:  "No orphans",
			Status: StatusPass,
			Detail: "all rows have forum records",
		})
		return result
	}

	detail := fmt.Sprintf("%d message(s), %d event(s), %d summary(ies), %d participant(s)",
		report.OrphanMessages, report.OrphanEvents, report.OrphanSummaries, report.OrphanParticipants)

	if c.fix {
		removed, err := store.PruneOrphans(ctx)
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "Orphaned rows",
				Status: StatusFail,
				Detail: fmt.Sprintf("failed to delete: %v", err),
			})
			return result
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "Orphaned rows",
			Status: StatusPass,
			Detail: fmt.Sprintf("deleted %d orphaned row(s)", removed),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:   "Orphaned rows",
		Status:  StatusWarn,
		Detail:  detail + " without a forum record",
		Fixable: true,
	})

	return result
}
