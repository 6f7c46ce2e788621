package styles

import (
	"strings"
	"testing"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

func TestRenderBoard(t *testing.T) {
	Init(config.DefaultColorScheme())

	view := &models.BoardView{
		Board: &models.Board{ID: 1, Name: "Roadmap", Version: 3},
		Columns: []*models.ColumnView{
			{Column: &models.Column{ID: 10, Name: "Todo"}, Cards: []*models.Card{
				{ID: 100, Title: "Write docs", Labels: []*models.Label{{ID: 1, Name: "docs", Color: "#FF0000"}}},
			}},
			{Column: &models.Column{ID: 11, Name: "Done", Position: 1}, Cards: []*models.Card{}},
		},
	}

	out := RenderBoard(view)
	for _, want := range []string{"Roadmap", "Todo (1)", "Done (0)", "Write docs", "[docs]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected board output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Index(out, "Todo") > strings.Index(out, "Done") {
		t.Error("Expected columns in position order")
	}
}

func TestRenderBoard_Empty(t *testing.T) {
	view := &models.BoardView{Board: &models.Board{ID: types.BoardID(2), Name: "Empty"}}
	if out := RenderBoard(view); !strings.Contains(out, "no columns yet") {
		t.Errorf("Expected empty board notice, got %q", out)
	}
}

func TestRenderDescription(t *testing.T) {
	if out := RenderDescription("", 40); !strings.Contains(out, "No description") {
		t.Errorf("Expected placeholder, got %q", out)
	}
	out := RenderDescription("# Heading\n\nsome **bold** text", 40)
	if !strings.Contains(out, "Heading") || !strings.Contains(out, "bold") {
		t.Errorf("Expected rendered markdown to keep its text, got %q", out)
	}
}
