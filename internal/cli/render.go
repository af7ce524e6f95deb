package cli

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

const maxContentWidth = 72

// listLines builds the panel body for `todo ls`: header, progress, items.
func listLines(items []model.Item, group bool) []string {
	t := ui.Current()
	pending, completed := view.Partition(items)
	d, p := len(completed), len(pending)

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if group {
		lines = append(lines, t.Accent.Render("Pending"))
		lines = append(lines, itemLines(pending, view.PendingPlaceholder)...)
		lines = append(lines, "")
		lines = append(lines, t.Accent.Render("Completed"))
		lines = append(lines, itemLines(completed, view.CompletedPlaceholder)...)
	} else {
		lines = append(lines, itemLines(items, "no items")...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	return lines
}

func itemLines(items []model.Item, empty string) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render(empty)}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box := t.Muted.Render(t.BoxUnchecked)
		content := ansi.Truncate(it.Content, maxContentWidth, "...")
		if it.IsCompleted {
			box = t.Success.Render(t.BoxChecked)
			content = t.Done.Render(content)
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("#%-3d", it.ID)), box, content))
	}
	return out
}
