package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BoardFiles and BoardRanks fix the 6x6 Los Alamos board: no bishops,
// files a-f, ranks 1-6.
const (
	BoardFiles = 6
	BoardRanks = 6
)

// Piece is one occupant square. Uppercase is white, lowercase black,
// zero is empty. Valid letters are K, Q, R, N, P in either case.
type Piece byte

// White reports the piece's side; meaningless for the zero piece.
func (p Piece) White() bool { return p >= 'A' && p <= 'Z' }

var pieceGlyphs = map[Piece]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'n': "♞", 'p': "♟",
}

// Glyph returns the unicode figurine, or a space for empty.
func (p Piece) Glyph() string {
	if g, ok := pieceGlyphs[p]; ok {
		return g
	}
	return " "
}

// Square addresses one board cell. File and Rank are 0-based; "a1" is
// file 0, rank 0.
type Square struct {
	File int
	Rank int
}

// ParseSquare reads algebraic like "c4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("square %q: want file letter and rank digit", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file >= BoardFiles || rank < 0 || rank >= BoardRanks {
		return Square{}, fmt.Errorf("square %q: off the 6x6 board", s)
	}
	return Square{File: file, Rank: rank}, nil
}

// String returns algebraic notation.
func (s Square) String() string {
	return fmt.Sprintf("%c%d", 'a'+s.File, s.Rank+1)
}

// Move is one half-move.
type Move struct {
	From    Square
	To      Square
	Piece   Piece
	Capture Piece
}

// Notation is the long-algebraic move text shown in the history panel.
func (m Move) Notation() string {
	sep := "-"
	if m.Capture != 0 {
		sep = "x"
	}
	letter := ""
	if m.Piece != 'P' && m.Piece != 'p' {
		letter = strings.ToUpper(string(rune(m.Piece)))
	}
	return letter + m.From.String() + sep + m.To.String()
}

// Board is the game shell the panels display. It tracks positions and
// the move list; rule enforcement lives outside this layer.
type Board struct {
	squares [BoardRanks][BoardFiles]Piece
	moves   []Move
	white   bool
}

// NewBoard sets up the Los Alamos starting position.
func NewBoard() *Board {
	b := &Board{white: true}
	back := []Piece{'R', 'N', 'Q', 'K', 'N', 'R'}
	for f := 0; f < BoardFiles; f++ {
		b.squares[0][f] = back[f]
		b.squares[1][f] = 'P'
		b.squares[BoardRanks-2][f] = 'p'
		b.squares[BoardRanks-1][f] = Piece(back[f] + 'a' - 'A')
	}
	return b
}

// At returns the occupant of a square.
func (b *Board) At(s Square) Piece {
	return b.squares[s.Rank][s.File]
}

// WhiteToMove reports whose turn it is.
func (b *Board) WhiteToMove() bool { return b.white }

// Moves returns the move list, oldest first.
func (b *Board) Moves() []Move {
	return append([]Move(nil), b.moves...)
}

// MoveNotations returns the history panel lines, numbered by full move.
func (b *Board) MoveNotations() []string {
	out := make([]string, 0, len(b.moves))
	for i, m := range b.moves {
		out = append(out, fmt.Sprintf("%d. %s", i/2+1, m.Notation()))
	}
	return out
}

// Apply moves a piece. It rejects empty origins and wrong-side moves but
// does not enforce piece movement rules.
func (b *Board) Apply(from, to Square) (Move, error) {
	piece := b.At(from)
	if piece == 0 {
		return Move{}, fmt.Errorf("move %s: empty square", from)
	}
	if piece.White() != b.white {
		side := "black"
		if b.white {
			side = "white"
		}
		return Move{}, fmt.Errorf("move %s: %s to move", from, side)
	}

	m := Move{From: from, To: to, Piece: piece, Capture: b.At(to)}
	b.squares[to.Rank][to.File] = piece
	b.squares[from.Rank][from.File] = 0
	b.moves = append(b.moves, m)
	b.white = !b.white
	return m, nil
}

// ApplyNotation parses "b2b3" style coordinates and applies the move.
func (b *Board) ApplyNotation(s string) (Move, error) {
	if len(s) != 4 {
		return Move{}, fmt.Errorf("move %q: want from+to like b2b3", s)
	}
	from, err := ParseSquare(s[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(s[2:])
	if err != nil {
		return Move{}, err
	}
	return b.Apply(from, to)
}

// Render draws the board at the given square side (in character cells).
// Ranks render top-down from black's back rank, the usual white-at-bottom
// orientation.
func (b *Board) Render(theme Theme, squareWidth int) string {
	if squareWidth < 2 {
		squareWidth = 2
	}

	light := lipgloss.NewStyle().Background(theme.BoardLight).Width(squareWidth)
	dark := lipgloss.NewStyle().Background(theme.BoardDark).Width(squareWidth)

	var rows []string
	for rank := BoardRanks - 1; rank >= 0; rank-- {
		var cells []string
		for file := 0; file < BoardFiles; file++ {
			piece := b.squares[rank][file]
			style := dark
			if (rank+file)%2 == 1 {
				style = light
			}
			fg := theme.PieceBlack
			if piece.White() {
				fg = theme.PieceWhite
			}
			pad := strings.Repeat(" ", (squareWidth-1)/2)
			cell := pad + piece.Glyph()
			cells = append(cells, style.Foreground(fg).Render(cell))
		}
		label := theme.MutedStyle().Render(fmt.Sprintf("%d ", rank+1))
		rows = append(rows, label+lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	var files strings.Builder
	files.WriteString("  ")
	for f := 0; f < BoardFiles; f++ {
		files.WriteString(lipgloss.PlaceHorizontal(squareWidth, lipgloss.Center, string(rune('a'+f))))
	}
	rows = append(rows, theme.MutedStyle().Render(files.String()))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
