package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/iliyamo/seating-designer/internal/model"
)

// Render prints one line per row followed by a summary.  The row holding
// the edit focus, if any, is marked with '*'.  Gaps print as '_'.
func Render(w io.Writer, l model.Layout, editing int) {
	if l.Len() == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	for i, r := range l.Rows {
		mark := " "
		if i == editing {
			mark = "*"
		}
		slots := make([]string, len(r.Seats))
		for j, s := range r.Seats {
			slots[j] = fmt.Sprintf("%2s", s.String())
		}
		fmt.Fprintf(w, "%s%s %-9s %s\n", mark, r.Label, "["+string(r.Tier)+"]", strings.Join(slots, " "))
	}
	fmt.Fprintln(w, summaryLine(l.Summary()))
}

func summaryLine(s model.Summary) string {
	var tiers []string
	for _, t := range model.Tiers() {
		if n := s.ByTier[t]; n > 0 {
			tiers = append(tiers, fmt.Sprintf("%s=%d", t, n))
		}
	}
	return fmt.Sprintf("%d rows, %d seats, %d gaps | %s", s.Rows, s.Seats, s.Gaps, strings.Join(tiers, " "))
}
