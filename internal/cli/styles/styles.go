// Package styles holds the lipgloss styles the CLI renders with
package styles

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Board layout
	ColumnStyle     lipgloss.Style
	ColumnWidth     = 28
	MiniCardStyle   lipgloss.Style
	ColumnNameStyle lipgloss.Style

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Column:", "Position:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Description", "Labels"

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.Accent)).
		Padding(1, 2).
		Width(CardWidth)

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.ColumnBorder)).
		Padding(0, 1).
		Width(ColumnWidth)

	MiniCardStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colors.CardBorder)).
		Foreground(lipgloss.Color(colors.Normal)).
		Width(ColumnWidth - 4)

	ColumnNameStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Accent)).
		Bold(true).
		MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.InfoFg)).
		Background(lipgloss.Color(colors.InfoBg)).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg)).
		Background(lipgloss.Color(colors.ErrorBg)).
		Padding(0, 1)

	WarningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.WarningFg)).
		Background(lipgloss.Color(colors.WarningBg)).
		Padding(0, 1)
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// RenderLabelChip renders a label as "[name]" with the label's color
func RenderLabelChip(label *models.Label) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(label.Color)).
		Bold(true).
		Render("[" + label.Name + "]")
}

// RenderField renders "Name: value"
func RenderField(name string, value any) string {
	return LabelStyle.Render(name+":") + " " + ValueStyle.Render(fmt.Sprint(value))
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

// RenderBoard lays the view's columns out side by side, cards in position
// order
func RenderBoard(view *models.BoardView) string {
	header := TitleStyle.Render(view.Board.Name) + " " +
		SubtitleStyle.Render(fmt.Sprintf("#%d  v%d", view.Board.ID, view.Board.Version))
	if len(view.Columns) == 0 {
		return header + "\n" + SubtitleStyle.Render("no columns yet") + "\n"
	}

	columns := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		columns[i] = renderColumn(col)
	}
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, columns...) + "\n"
}

func renderColumn(col *models.ColumnView) string {
	var b strings.Builder
	b.WriteString(ColumnNameStyle.Render(fmt.Sprintf("%s (%d)", col.Name, len(col.Cards))))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("#%d  v%d", col.ID, col.Version)))
	for _, card := range col.Cards {
		b.WriteString("\n")
		b.WriteString(MiniCardStyle.Render(renderMiniCard(card)))
	}
	return ColumnStyle.Render(b.String())
}

func renderMiniCard(card *models.Card) string {
	line := fmt.Sprintf("#%d %s", card.ID, card.Title)
	if len(card.Labels) == 0 {
		return line
	}
	chips := make([]string, len(card.Labels))
	for i, l := range card.Labels {
		chips[i] = RenderLabelChip(l)
	}
	return line + "\n" + strings.Join(chips, " ")
}
