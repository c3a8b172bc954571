package grid

import (
	"reflect"
	"testing"
)

func TestCellID(t *testing.T) {
	if got := CellID(1, 2); got != "B3" {
		t.Errorf("expected B3, got %q", got)
	}
	if got := CellID(0, 0); got != "A1" {
		t.Errorf("expected A1, got %q", got)
	}
}

func TestRangeNormalize(t *testing.T) {
	r := Range{StartCol: 3, StartRow: 1, EndCol: 0, EndRow: 5}
	minCol, minRow, maxCol, maxRow := r.Normalize()
	if minCol != 0 || maxCol != 3 || minRow != 1 || maxRow != 5 {
		t.Errorf("unexpected rectangle: cols [%d..%d] rows [%d..%d]", minCol, maxCol, minRow, maxRow)
	}
	// The anchor stays at (3,1) regardless of normalization.
	if r.StartCol != 3 || r.StartRow != 1 {
		t.Errorf("anchor moved: (%d,%d)", r.StartCol, r.StartRow)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{StartCol: 2, StartRow: 4, EndCol: 0, EndRow: 1}
	if !r.Contains(1, 2) {
		t.Error("expected (1,2) inside inverted range")
	}
	if r.Contains(3, 2) {
		t.Error("expected (3,2) outside range")
	}
}

func TestCommitEditLastWriteWins(t *testing.T) {
	store := NewStore()
	store.CommitEdit("D5", "first")
	store.CommitEdit("D5", "=2+3")
	store.CommitEdit("D5", "final")

	cell, ok := store.Cell("D5")
	if !ok {
		t.Fatal("expected cell to exist")
	}
	if cell.Value != "final" {
		t.Errorf("expected final value, got %q", cell.Value)
	}
	if cell.Formula != "" {
		t.Errorf("expected formula cleared by literal commit, got %q", cell.Formula)
	}
}

func TestCommitEditStoresFormulaAndValue(t *testing.T) {
	store := NewStore()
	if !store.CommitEdit("E1", "=B2+C2") {
		t.Fatal("commit rejected")
	}
	cell, _ := store.Cell("E1")
	if cell.Formula != "=B2+C2" {
		t.Errorf("expected formula text kept, got %q", cell.Formula)
	}
	if cell.Value != "185000" {
		t.Errorf("expected evaluated value 185000, got %q", cell.Value)
	}
}

func TestLockedCellInvariance(t *testing.T) {
	store := NewStore()
	seed := store.Snapshot()

	store.CommitEdit("B2", "0")
	store.PasteValue("B2", "0")
	store.ClearRange(Range{StartCol: 0, StartRow: 0, EndCol: 6, EndRow: 24})
	store.CommitEdit("A1", "=1+1")

	for id, want := range seed {
		if !want.Locked {
			continue
		}
		got, ok := store.Cell(id)
		if !ok {
			t.Fatalf("locked cell %s missing after mutations", id)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("locked cell %s changed: %+v != %+v", id, got, want)
		}
	}
}

func TestClearRangeRemovesOnlyUnlocked(t *testing.T) {
	store := NewStore()
	store.CommitEdit("D2", "scratch")
	store.CommitEdit("E3", "more")

	// Rectangle spans locked pricing rows and the scratch cells.
	store.ClearRange(Range{StartCol: 0, StartRow: 0, EndCol: 4, EndRow: 9})

	if _, ok := store.Cell("D2"); ok {
		t.Error("expected unlocked D2 removed")
	}
	if _, ok := store.Cell("E3"); ok {
		t.Error("expected unlocked E3 removed")
	}
	cell, ok := store.Cell("B2")
	if !ok || cell.Value != "55000" {
		t.Errorf("expected locked B2 to keep its seed value, got %+v (ok=%v)", cell, ok)
	}
}

func TestPasteValueRespectsLock(t *testing.T) {
	store := NewStore()
	if store.PasteValue("C2", "1") {
		t.Error("expected paste into locked cell rejected")
	}
	if !store.PasteValue("D2", "copied") {
		t.Error("expected paste into unlocked cell accepted")
	}
	cell, _ := store.Cell("D2")
	if cell.Value != "copied" {
		t.Errorf("expected pasted value, got %q", cell.Value)
	}
}

func TestResizeColumnFloor(t *testing.T) {
	store := NewStore()
	store.ResizeColumn("B", 10)
	if got := store.ColumnWidth("B"); got != MinColumnWidth {
		t.Errorf("expected floor %d, got %d", MinColumnWidth, got)
	}
	store.ResizeColumn("B", 250)
	if got := store.ColumnWidth("B"); got != 250 {
		t.Errorf("expected 250, got %d", got)
	}
}
