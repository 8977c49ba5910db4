package repository

import (
	"strings"
	"testing"
)

func TestOverdueQueriesSharePredicate(t *testing.T) {
	for name, query := range map[string]string{
		"list":  listOverdueQuery,
		"claim": claimDeadlineQuery,
	} {
		if !strings.Contains(query, overduePredicate) {
			t.Errorf("%s query does not use the overdue predicate:\n%s", name, query)
		}
	}
	for _, clause := range []string{"status IN ($1, $2)", "deadline IS NOT NULL", "deadline < $3", "is_deadline_notified = FALSE"} {
		if !strings.Contains(overduePredicate, clause) {
			t.Errorf("overdue predicate misses %q", clause)
		}
	}
	if !strings.Contains(claimDeadlineQuery, "id=$4") {
		t.Errorf("claim query must target a single question")
	}
}
