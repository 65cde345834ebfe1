// Package roadmap renders the round history as a bead road: a fixed grid
// filled column by column, top to bottom, scrolling left once full.
package roadmap

import "github.com/aristath/baccarat/internal/domain"

// Grid size limits
const (
	DefaultRows = 6
	DefaultCols = 12
	MaxRows     = 20
	MaxCols     = 200
)

// Cell markers
const (
	CellBanker = "B"
	CellPlayer = "P"
	CellTie    = "T"
	CellEmpty  = ""
)

// Summary counts every round in the history, not only the visible ones
type Summary struct {
	Banker int `json:"banker"`
	Player int `json:"player"`
	Tie    int `json:"tie"`
	Total  int `json:"total"`
}

// Grid is the rendered bead road. Cells is indexed [row][col].
type Grid struct {
	Rows    int        `json:"rows"`
	Cols    int        `json:"cols"`
	Cells   [][]string `json:"cells"`
	Summary Summary    `json:"summary"`
}

func marker(r domain.Result) string {
	switch r {
	case domain.Banker:
		return CellBanker
	case domain.Player:
		return CellPlayer
	case domain.Tie:
		return CellTie
	}
	return CellEmpty
}

// Build lays out history on a rows x cols grid. Non-positive dimensions take
// the defaults and oversize ones are clamped to MaxRows/MaxCols.
func Build(history []domain.RoundRecord, rows, cols int) Grid {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	rows = min(rows, MaxRows)
	cols = min(cols, MaxCols)

	g := Grid{Rows: rows, Cols: cols, Cells: make([][]string, rows)}
	for r := range g.Cells {
		g.Cells[r] = make([]string, cols)
	}

	row, col := 0, 0
	for _, rec := range history {
		switch rec.Result {
		case domain.Banker:
			g.Summary.Banker++
		case domain.Player:
			g.Summary.Player++
		case domain.Tie:
			g.Summary.Tie++
		}
		g.Summary.Total++

		if row >= rows {
			row = 0
			col++
			if col >= cols {
				g.shiftLeft()
				col = cols - 1
			}
		}
		g.Cells[row][col] = marker(rec.Result)
		row++
	}
	return g
}

// shiftLeft drops the first column and clears the last one.
func (g *Grid) shiftLeft() {
	for r := range g.Cells {
		copy(g.Cells[r], g.Cells[r][1:])
		g.Cells[r][g.Cols-1] = CellEmpty
	}
}
