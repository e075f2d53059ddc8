package ui

import (
	"fmt"
	"strings"
)

// renderHeader renders the status bar: logo, target, progress, run state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	var parts []string
	parts = append(parts, styles.Logo.Render("flix"))

	if m.hostname != "" {
		parts = append(parts, styles.MutedText.Render(truncateMiddle(m.hostname, 30)))
	}

	snap := m.snapshot
	if snap.SequenceName != "" {
		target := fmt.Sprintf("%s r%d", snap.SequenceName, snap.Revision)
		parts = append(parts, styles.AccentText.Render(target))
	}

	total := len(snap.Shots)
	if total > 0 {
		progress := fmt.Sprintf("%d/%d shots", snap.Completed(), total)
		parts = append(parts, styles.Text.Render(progress))
		if failed := snap.Failed(); failed > 0 {
			parts = append(parts, styles.DangerText.Render(fmt.Sprintf("%d failed", failed)))
		}
	}

	switch {
	case snap.LastError != nil:
		parts = append(parts, styles.DangerText.Render("RUN FAILED"))
	case snap.Done:
		if snap.Failed() > 0 {
			parts = append(parts, styles.WarningText.Render("DONE WITH ERRORS"))
		} else {
			parts = append(parts, styles.SuccessText.Render("DONE"))
		}
	case total > 0:
		parts = append(parts, m.spin.View()+styles.WarningText.Render("EXPORTING"))
	default:
		parts = append(parts, m.spin.View()+styles.MutedText.Render("fetching timeline..."))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderFooter renders the key hint bar, or the run error when one exists.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.snapshot.LastError != nil {
		msg := truncate(m.snapshot.LastError.Error(), maxInt(m.width-4, 20))
		return styles.Footer.Width(m.width).Render(styles.DangerText.Render(msg))
	}

	return styles.Footer.Width(m.width).Render(m.helpView.View(m.keys))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
