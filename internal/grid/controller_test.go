package grid

import "testing"

func newTestController() (*Controller, *Store) {
	store := NewStore()
	return NewController(store), store
}

func TestSelectionDragKeepsAnchor(t *testing.T) {
	c, _ := newTestController()

	c.PointerDown(3, 1)
	if c.State() != StateSelecting {
		t.Fatalf("expected selecting state, got %v", c.State())
	}
	c.PointerEnter(0, 5)
	c.PointerEnter(1, 3)
	c.PointerUp()

	sel := c.Selection()
	if sel.StartCol != 3 || sel.StartRow != 1 {
		t.Errorf("anchor moved during drag: (%d,%d)", sel.StartCol, sel.StartRow)
	}
	if sel.EndCol != 1 || sel.EndRow != 3 {
		t.Errorf("unexpected drag endpoint: (%d,%d)", sel.EndCol, sel.EndRow)
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle after pointer up, got %v", c.State())
	}
	if c.ActiveCellID() != "D2" {
		t.Errorf("expected active cell D2, got %s", c.ActiveCellID())
	}
}

func TestPointerDownDismissesMenu(t *testing.T) {
	c, _ := newTestController()
	c.OpenContextMenu(4, 4, 100, 100)
	if c.Menu() == nil {
		t.Fatal("expected open menu")
	}
	c.PointerDown(2, 2)
	if c.Menu() != nil {
		t.Error("expected menu dismissed on pointer down")
	}
}

func TestKeyboardNavigationClamps(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(0, 0)
	c.PointerUp()

	c.KeyDown(KeyArrowLeft)
	c.KeyDown(KeyArrowUp)
	sel := c.Selection()
	if sel.StartCol != 0 || sel.StartRow != 0 {
		t.Errorf("expected clamp at A1, got (%d,%d)", sel.StartCol, sel.StartRow)
	}

	c.PointerDown(len(Columns)-1, Rows-1)
	c.PointerUp()
	c.KeyDown(KeyArrowRight)
	c.KeyDown(KeyArrowDown)
	sel = c.Selection()
	if sel.StartCol != len(Columns)-1 || sel.StartRow != Rows-1 {
		t.Errorf("expected clamp at G25, got (%d,%d)", sel.StartCol, sel.StartRow)
	}
}

func TestArrowCollapsesRange(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(2, 2)
	c.PointerEnter(4, 4)
	c.PointerUp()

	c.KeyDown(KeyArrowRight)
	sel := c.Selection()
	if sel.StartCol != 3 || sel.EndCol != 3 || sel.StartRow != 2 || sel.EndRow != 2 {
		t.Errorf("expected collapsed selection at (3,2), got %+v", sel)
	}
}

func TestEditLifecycle(t *testing.T) {
	c, store := newTestController()
	c.PointerDown(3, 4) // D5, unlocked
	c.PointerUp()

	c.DoubleClick()
	if c.State() != StateEditing {
		t.Fatalf("expected editing state, got %v", c.State())
	}
	c.SetEditBuffer("=2*3")
	c.KeyDown(KeyEnter)

	if c.State() != StateIdle {
		t.Errorf("expected idle after commit, got %v", c.State())
	}
	cell, _ := store.Cell("D5")
	if cell.Value != "6" || cell.Formula != "=2*3" {
		t.Errorf("unexpected committed cell: %+v", cell)
	}
}

func TestEditBufferSeedsFromFormula(t *testing.T) {
	c, store := newTestController()
	store.CommitEdit("D5", "=1+1")

	c.PointerDown(3, 4)
	c.PointerUp()
	c.DoubleClick()
	if c.EditBuffer() != "=1+1" {
		t.Errorf("expected buffer seeded from formula, got %q", c.EditBuffer())
	}
}

func TestEnterOpensEditingWhenIdle(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(4, 4)
	c.PointerUp()
	c.KeyDown(KeyEnter)
	if c.State() != StateEditing {
		t.Errorf("expected Enter to open editing, got %v", c.State())
	}
}

func TestDoubleClickLockedCellIgnored(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(0, 0) // A1, locked
	c.PointerUp()
	c.DoubleClick()
	if c.State() != StateIdle {
		t.Errorf("expected locked cell edit refused, got %v", c.State())
	}
}

func TestBlurCommitsEdit(t *testing.T) {
	c, store := newTestController()
	c.PointerDown(5, 5)
	c.PointerUp()
	c.DoubleClick()
	c.SetEditBuffer("typed")
	c.Blur()

	cell, _ := store.Cell("F6")
	if cell.Value != "typed" {
		t.Errorf("expected blur commit, got %+v", cell)
	}
}

func TestDeleteClearsSelectionRespectingLocks(t *testing.T) {
	c, store := newTestController()
	store.CommitEdit("D2", "scratch")

	c.PointerDown(0, 0)
	c.PointerEnter(3, 8)
	c.PointerUp()
	c.KeyDown(KeyDelete)

	if _, ok := store.Cell("D2"); ok {
		t.Error("expected unlocked cell cleared")
	}
	if cell, _ := store.Cell("B2"); cell.Value != "55000" {
		t.Errorf("expected locked cell untouched, got %+v", cell)
	}
}

func TestContextMenuOutsideSelectionCollapses(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(0, 0)
	c.PointerEnter(1, 1)
	c.PointerUp()

	c.OpenContextMenu(5, 5, 40, 60)
	sel := c.Selection()
	if sel.StartCol != 5 || sel.StartRow != 5 || sel.EndCol != 5 || sel.EndRow != 5 {
		t.Errorf("expected selection collapsed to clicked cell, got %+v", sel)
	}
	menu := c.Menu()
	if menu == nil || menu.X != 40 || menu.Y != 60 {
		t.Errorf("expected menu at pointer, got %+v", menu)
	}
}

func TestContextMenuInsideSelectionKeepsRange(t *testing.T) {
	c, _ := newTestController()
	c.PointerDown(0, 0)
	c.PointerEnter(2, 2)
	c.PointerUp()

	c.OpenContextMenu(1, 1, 10, 10)
	sel := c.Selection()
	if sel.EndCol != 2 || sel.EndRow != 2 {
		t.Errorf("expected range kept, got %+v", sel)
	}
}

func TestCopyPasteSingleSlot(t *testing.T) {
	c, store := newTestController()

	// Copy the locked B2 price, paste into unlocked D2.
	c.PointerDown(1, 1)
	c.PointerUp()
	c.OpenContextMenu(1, 1, 0, 0)
	c.MenuCopy()

	c.PointerDown(3, 1)
	c.PointerUp()
	c.OpenContextMenu(3, 1, 0, 0)
	if !c.CanPaste() {
		t.Fatal("expected paste available")
	}
	c.MenuPaste()

	cell, _ := store.Cell("D2")
	if cell.Value != "55000" {
		t.Errorf("expected pasted clipboard value, got %+v", cell)
	}
}

func TestPasteIntoLockedCellIsNoop(t *testing.T) {
	c, store := newTestController()
	c.PointerDown(3, 1)
	c.PointerUp()
	store.CommitEdit("D2", "source")
	c.OpenContextMenu(3, 1, 0, 0)
	c.MenuCopy()

	c.PointerDown(1, 1) // B2, locked
	c.PointerUp()
	c.OpenContextMenu(1, 1, 0, 0)
	if c.CanPaste() {
		t.Error("expected paste disabled for locked target")
	}
	c.MenuPaste() // must not panic or mutate

	cell, _ := store.Cell("B2")
	if cell.Value != "55000" {
		t.Errorf("locked cell changed by paste: %+v", cell)
	}
	if c.Menu() != nil {
		t.Error("expected menu closed even when paste is a no-op")
	}
}

func TestPasteWithEmptyClipboardIsNoop(t *testing.T) {
	c, store := newTestController()
	c.PointerDown(3, 1)
	c.PointerUp()
	c.OpenContextMenu(3, 1, 0, 0)
	if c.CanPaste() {
		t.Error("expected paste disabled with empty clipboard")
	}
	c.MenuPaste()
	if _, ok := store.Cell("D2"); ok {
		t.Error("expected no cell created by empty paste")
	}
}

func TestResizeDragGlobalRelease(t *testing.T) {
	c, store := newTestController()

	c.ResizeStart("B", 500)
	if c.State() != StateResizing {
		t.Fatalf("expected resizing state, got %v", c.State())
	}
	c.ResizeMove(530)
	if got := store.ColumnWidth("B"); got != 150 {
		t.Errorf("expected live width 150, got %d", got)
	}
	c.ResizeMove(300) // drag far left, below the floor
	if got := store.ColumnWidth("B"); got != MinColumnWidth {
		t.Errorf("expected floor %d, got %d", MinColumnWidth, got)
	}

	// Release via the window-level pointer up, not the handle.
	c.PointerUp()
	if c.State() != StateIdle {
		t.Errorf("expected idle after global release, got %v", c.State())
	}
	if got := store.ColumnWidth("B"); got != MinColumnWidth {
		t.Errorf("expected final width retained, got %d", got)
	}
}
