package grid

// State is the interaction mode of the controller.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateEditing
	StateResizing
)

// Key identifies the keyboard inputs the grid reacts to in idle mode.
type Key int

const (
	KeyArrowUp Key = iota
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyEnter
	KeyBackspace
	KeyDelete
)

// Menu is an open context menu, positioned at the pointer.
type Menu struct {
	X int
	Y int
}

// Controller translates pointer and keyboard events into Store operations.
// It owns the selection, the transient edit buffer, the single-slot
// clipboard and the resize drag. Resize release is global-capture: PointerUp
// ends a resize no matter where the pointer is, because the drag routinely
// leaves the handle's bounding box. All operations against locked cells are
// silent no-ops.
type Controller struct {
	store *Store

	state     State
	selection Range

	editBuffer string

	clipboard    string
	hasClipboard bool

	menu *Menu

	resizeCol        string
	resizeStartX     int
	resizeStartWidth int
}

// NewController starts idle with the selection collapsed on G25, matching
// the widget's initial focus cell.
func NewController(store *Store) *Controller {
	return &Controller{
		store:     store,
		selection: CellRange(len(Columns)-1, Rows-1),
	}
}

func (c *Controller) State() State     { return c.state }
func (c *Controller) Selection() Range { return c.selection }
func (c *Controller) Menu() *Menu      { return c.menu }

// ActiveCellID is the anchor of the selection: the cell the formula bar and
// single-cell edits operate on, even when a multi-cell range is selected.
func (c *Controller) ActiveCellID() string {
	return CellID(c.selection.StartCol, c.selection.StartRow)
}

// FormulaBarText is what the formula bar shows: the edit buffer while
// editing, otherwise the active cell's formula if present, else its value.
func (c *Controller) FormulaBarText() string {
	if c.state == StateEditing {
		return c.editBuffer
	}
	cell, ok := c.store.Cell(c.ActiveCellID())
	if !ok {
		return ""
	}
	if cell.Formula != "" {
		return cell.Formula
	}
	return cell.Value
}

// PointerDown anchors a new selection on the pressed cell and dismisses any
// open context menu. Ignored while editing; the edit commits on blur.
func (c *Controller) PointerDown(col, row int) {
	if c.state == StateEditing {
		return
	}
	c.state = StateSelecting
	c.selection = CellRange(col, row)
	c.menu = nil
}

// PointerEnter extends the drag endpoint while selecting. The anchor never
// moves during a drag.
func (c *Controller) PointerEnter(col, row int) {
	if c.state != StateSelecting {
		return
	}
	c.selection.EndCol = col
	c.selection.EndRow = row
}

// PointerUp ends a selection drag or a resize drag, wherever the pointer is.
func (c *Controller) PointerUp() {
	switch c.state {
	case StateSelecting:
		c.state = StateIdle
	case StateResizing:
		c.resizeCol = ""
		c.state = StateIdle
	}
}

// DoubleClick opens editing on the active cell unless it is locked. The edit
// buffer seeds from the formula when present, else the value.
func (c *Controller) DoubleClick() {
	if c.state != StateIdle {
		return
	}
	id := c.ActiveCellID()
	if c.store.Locked(id) {
		return
	}
	c.state = StateEditing
	if cell, ok := c.store.Cell(id); ok {
		if cell.Formula != "" {
			c.editBuffer = cell.Formula
		} else {
			c.editBuffer = cell.Value
		}
	} else {
		c.editBuffer = ""
	}
}

// SetEditBuffer replaces the transient edit buffer while editing.
func (c *Controller) SetEditBuffer(text string) {
	if c.state != StateEditing {
		return
	}
	c.editBuffer = text
}

// EditBuffer returns the transient edit buffer.
func (c *Controller) EditBuffer() string { return c.editBuffer }

// CommitEdit writes the edit buffer through the store and returns to idle.
// Blur commits the same way.
func (c *Controller) CommitEdit() {
	if c.state != StateEditing {
		return
	}
	c.store.CommitEdit(c.ActiveCellID(), c.editBuffer)
	c.editBuffer = ""
	c.state = StateIdle
}

// Blur commits an edit in progress, mirroring the input losing focus.
func (c *Controller) Blur() { c.CommitEdit() }

// KeyDown handles keyboard input. While editing only Enter is meaningful
// (it commits). In idle mode arrows move the collapsed selection clamped to
// the grid bounds, Enter opens editing, and Backspace/Delete clears the
// selection range.
func (c *Controller) KeyDown(key Key) {
	if c.state == StateEditing {
		if key == KeyEnter {
			c.CommitEdit()
		}
		return
	}
	if c.state != StateIdle {
		return
	}

	col, row := c.selection.StartCol, c.selection.StartRow
	switch key {
	case KeyArrowRight:
		if col < len(Columns)-1 {
			c.selection = CellRange(col+1, row)
		}
	case KeyArrowLeft:
		if col > 0 {
			c.selection = CellRange(col-1, row)
		}
	case KeyArrowDown:
		if row < Rows-1 {
			c.selection = CellRange(col, row+1)
		}
	case KeyArrowUp:
		if row > 0 {
			c.selection = CellRange(col, row-1)
		}
	case KeyEnter:
		c.DoubleClick()
	case KeyBackspace, KeyDelete:
		c.store.ClearRange(c.selection)
	}
}

// OpenContextMenu handles right-click: a click outside the current selection
// first collapses the selection to the clicked cell, then the menu opens at
// the pointer position.
func (c *Controller) OpenContextMenu(col, row, x, y int) {
	if c.state == StateEditing {
		return
	}
	if !c.selection.Contains(col, row) {
		c.selection = CellRange(col, row)
	}
	c.menu = &Menu{X: x, Y: y}
}

// CloseContextMenu dismisses the menu without acting.
func (c *Controller) CloseContextMenu() { c.menu = nil }

// MenuCopy stores the active cell's raw value in the single-slot clipboard.
// Copying an empty cell is a no-op, as in the menu's disabled state.
func (c *Controller) MenuCopy() {
	if cell, ok := c.store.Cell(c.ActiveCellID()); ok {
		c.clipboard = cell.Value
		c.hasClipboard = true
	}
	c.menu = nil
}

// CanPaste reports whether Paste would do anything; the menu renders a
// disabled item otherwise.
func (c *Controller) CanPaste() bool {
	return c.hasClipboard && !c.store.Locked(c.ActiveCellID())
}

// MenuPaste writes the clipboard value into the active cell. Selecting the
// disabled item (locked target or empty clipboard) is a no-op.
func (c *Controller) MenuPaste() {
	if c.CanPaste() {
		c.store.PasteValue(c.ActiveCellID(), c.clipboard)
	}
	c.menu = nil
}

// MenuClear clears the current selection range, honoring locked cells.
func (c *Controller) MenuClear() {
	c.store.ClearRange(c.selection)
	c.menu = nil
}

// ResizeStart begins a column-width drag from pointer position x.
func (c *Controller) ResizeStart(col string, x int) {
	if c.state != StateIdle {
		return
	}
	c.state = StateResizing
	c.resizeCol = col
	c.resizeStartX = x
	c.resizeStartWidth = c.store.ColumnWidth(col)
}

// ResizeMove applies the width live during the drag.
func (c *Controller) ResizeMove(x int) {
	if c.state != StateResizing {
		return
	}
	c.store.ResizeColumn(c.resizeCol, c.resizeStartWidth+(x-c.resizeStartX))
}

// ResizeEnd finishes the drag; the last applied width is retained.
func (c *Controller) ResizeEnd() {
	if c.state != StateResizing {
		return
	}
	c.resizeCol = ""
	c.state = StateIdle
}
