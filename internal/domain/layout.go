package domain

// Slot positions are absolute zero-based indexes into a binder. The grid
// settings only affect how positions map onto pages, rows and columns, so
// resizing the grid re-flows the layout without touching stored positions.

// Cell identifies where a slot lands for a given grid size.
type Cell struct {
	Page int `json:"page"`
	Row  int `json:"row"`
	Col  int `json:"col"`
}

// SlotToPage returns the zero-based page a position falls on.
func SlotToPage(pos, pageSize int) int {
	if pageSize <= 0 || pos < 0 {
		return 0
	}
	return pos / pageSize
}

// SlotToCell maps an absolute position to its page/row/column for the
// given grid dimensions.
func SlotToCell(pos, rows, cols int) Cell {
	if rows <= 0 || cols <= 0 || pos < 0 {
		return Cell{}
	}
	pageSize := rows * cols
	offset := pos % pageSize
	return Cell{
		Page: pos / pageSize,
		Row:  offset / cols,
		Col:  offset % cols,
	}
}

// CellToSlot is the inverse of SlotToCell.
func CellToSlot(c Cell, rows, cols int) int {
	if rows <= 0 || cols <= 0 {
		return 0
	}
	return c.Page*rows*cols + c.Row*cols + c.Col
}

// PageBounds returns the inclusive first and exclusive last position of a
// page for the given page size.
func PageBounds(page, pageSize int) (start, end int) {
	if pageSize <= 0 || page < 0 {
		return 0, 0
	}
	return page * pageSize, (page + 1) * pageSize
}
