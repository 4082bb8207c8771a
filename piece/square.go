package piece

// The board is 10 rows by 9 columns stored row-major. Row 0 is Black's
// back rank, row 9 is Red's.
const (
	NumRows    = 10
	NumCols    = 9
	NumSquares = NumRows * NumCols
)

// Square returns the index of (row, col).
func Square(row, col int) int {
	return row*NumCols + col
}

func Row(sq int) int {
	return sq / NumCols
}

func Col(sq int) int {
	return sq % NumCols
}

// OnBoard reports whether (row, col) is inside the grid.
func OnBoard(row, col int) bool {
	return row >= 0 && row < NumRows && col >= 0 && col < NumCols
}

// InPalace reports whether (row, col) is inside the 3x3 palace of s.
func InPalace(row, col int, s Side) bool {
	if col < 3 || col > 5 {
		return false
	}
	if s == Red {
		return row >= 7 && row <= 9
	}
	return row >= 0 && row <= 2
}

// OwnHalf reports whether row is on s's side of the river.
func OwnHalf(row int, s Side) bool {
	if s == Red {
		return row >= 5
	}
	return row <= 4
}
