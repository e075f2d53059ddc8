package ui

import (
	"fmt"
	"strings"

	"github.com/nemroff/flix-scripts/internal/state"
)

// Column widths for the shots table. NAME flexes with the terminal.
const (
	colPanels = 7
	colChain  = 8
	colPhase  = 12
	colPolls  = 6
	colMedia  = 10
)

// renderShots renders the per-shot progress table.
func (m Model) renderShots() string {
	styles := m.theme.Styles()

	if len(m.snapshot.Shots) == 0 {
		return styles.MutedText.Padding(1, 2).Render("No shots yet.")
	}

	nameWidth := m.nameColumnWidth()

	var b strings.Builder
	header := padRight("SHOT", nameWidth) +
		padRight("PANELS", colPanels) +
		padRight("CHAIN", colChain) +
		padRight("STATUS", colPhase) +
		padRight("POLLS", colPolls) +
		padRight("MEDIA", colMedia) +
		"ERROR"
	b.WriteString(styles.FaintText.Bold(true).Render(header))
	b.WriteString("\n")

	for i, shot := range m.snapshot.Shots {
		b.WriteString(m.renderShotRow(shot, nameWidth, i == m.selectedRow))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderShotRow(shot state.ShotStatus, nameWidth int, selected bool) string {
	styles := m.theme.Styles()

	chain := "-"
	if shot.ChainID > 0 {
		chain = fmt.Sprintf("%d", shot.ChainID)
	}
	polls := "-"
	if shot.Retries > 0 {
		polls = fmt.Sprintf("%d", shot.Retries)
	}
	media := "-"
	if shot.MediaObjectID > 0 {
		media = fmt.Sprintf("%d", shot.MediaObjectID)
	}
	errText := ""
	if shot.Err != nil {
		errText = truncate(shot.Err.Error(), maxInt(m.width-m.fixedColumnsWidth()-nameWidth, 10))
	}

	// The phase badge carries ANSI codes, so pad by its visible width
	// instead of running it through padRight.
	badge := styles.PhaseStyle(string(shot.Phase)).Render(string(shot.Phase))
	badgePad := strings.Repeat(" ", maxInt(colPhase-len(shot.Phase)-2, 1))

	name := padRight(truncate(shot.Name, nameWidth-1), nameWidth)
	row := padRight(fmt.Sprintf("%d", shot.PanelCount), colPanels) +
		padRight(chain, colChain) +
		badge + badgePad +
		padRight(polls, colPolls) +
		padRight(media, colMedia) +
		styles.DangerText.Render(errText)

	if selected {
		return styles.Selected.Render(name) + row
	}
	return styles.Text.Render(name) + row
}

func (m Model) nameColumnWidth() int {
	width := 16
	for _, shot := range m.snapshot.Shots {
		if n := len(shot.Name) + 2; n > width {
			width = n
		}
	}
	// Never let the name column eat the whole terminal.
	if limit := m.width / 3; limit > 16 && width > limit {
		width = limit
	}
	return width
}

func (m Model) fixedColumnsWidth() int {
	return colPanels + colChain + colPhase + colPolls + colMedia
}
