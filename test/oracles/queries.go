package oracles

import (
	"fmt"

	"reviewdesk/test/infra"
)

type Oracle struct {
	Name string
	// Check returns a description of the first violation, or "" when the
	// invariant holds. settled is true once all actors have stopped.
	Check func(desk *infra.Desk, settled bool) string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_version_accounts_for_writes",
			Check: func(desk *infra.Desk, settled bool) string {
				initial, writes, _, _ := desk.Ledger.Snapshot()
				for _, rec := range desk.Store.List() {
					want := initial[rec.ID] + writes[rec.ID]
					if settled && rec.Version != want {
						return fmt.Sprintf("record %s version %d, expected %d", rec.ID, rec.Version, want)
					}
					if !settled && rec.Version < want {
						return fmt.Sprintf("record %s version %d behind %d observed writes", rec.ID, rec.Version, want)
					}
				}
				return ""
			},
		},
		{
			Name: "O2_counts_cover_collection",
			Check: func(desk *infra.Desk, _ bool) string {
				sum := 0
				for _, n := range desk.Store.Counts() {
					sum += n
				}
				if sum != desk.Store.Len() {
					return fmt.Sprintf("status counts sum %d, collection %d", sum, desk.Store.Len())
				}
				return ""
			},
		},
		{
			Name: "O3_note_policy",
			Check: func(desk *infra.Desk, _ bool) string {
				for _, rec := range desk.Store.List() {
					if rec.Status.RequiresNote() && (rec.Note == nil || *rec.Note == "") {
						return fmt.Sprintf("record %s is %s without a note", rec.ID, rec.Status)
					}
				}
				return ""
			},
		},
		{
			Name: "O4_history_entries_are_transitions",
			Check: func(desk *infra.Desk, settled bool) string {
				entries := desk.History.List()
				for _, e := range entries {
					if e.PreviousStatus == e.NewStatus {
						return fmt.Sprintf("history entry for %s has no status change (%s)", e.RecordID, e.NewStatus)
					}
					if !e.NewStatus.Valid() || !e.PreviousStatus.Valid() {
						return fmt.Sprintf("history entry for %s has unknown status", e.RecordID)
					}
				}
				_, _, transitions, clears := desk.Ledger.Snapshot()
				if settled && len(entries) > transitions {
					return fmt.Sprintf("%d history entries for %d transitions", len(entries), transitions)
				}
				if settled && clears == 0 && len(entries) != transitions {
					return fmt.Sprintf("%d history entries for %d transitions with no clears", len(entries), transitions)
				}
				return ""
			},
		},
	}
}

// Run executes all oracles and returns the first failure (name and detail) or an empty name if all pass.
func Run(desk *infra.Desk, settled bool) (string, string) {
	for _, o := range All() {
		if detail := o.Check(desk, settled); detail != "" {
			return o.Name, detail
		}
	}
	return "", ""
}
