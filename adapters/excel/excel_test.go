package excel

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sheetorm/sheetorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(&Config{FilePath: filepath.Join(t.TempDir(), "data.xlsx")})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error")
	}
	if _, err := New(&Config{}); err == nil {
		t.Error("New() with empty file path expected error")
	}
}

func TestStore_MissingTable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.ReadRange(ctx, "Users!A1:ZZ1")
	if !errors.Is(err, sheetorm.ErrTableNotFound) {
		t.Errorf("ReadRange() on missing workbook error = %v, want ErrTableNotFound", err)
	}

	if err := store.CreateTable(ctx, "Users"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	_, err = store.ReadRange(ctx, "Posts!A1:ZZ1")
	if !errors.Is(err, sheetorm.ErrTableNotFound) {
		t.Errorf("ReadRange() on missing sheet error = %v, want ErrTableNotFound", err)
	}

	if err := store.CreateTable(ctx, "Users"); !errors.Is(err, sheetorm.ErrTableExists) {
		t.Errorf("CreateTable() twice error = %v, want ErrTableExists", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateTable(ctx, "Users"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	header := [][]string{{"id", "name", "age"}}
	if err := store.OverwriteRange(ctx, "Users!A1:ZZ1", header); err != nil {
		t.Fatalf("OverwriteRange(header) error = %v", err)
	}

	rows := [][]string{
		{"1", "Alice", "30"},
		{"2", "Bob", "25"},
	}
	if err := store.AppendRows(ctx, "Users!A2:ZZ", rows); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	got, err := store.ReadRange(ctx, "Users!A1:ZZ1")
	if err != nil {
		t.Fatalf("ReadRange(header) error = %v", err)
	}
	if !reflect.DeepEqual(got, header) {
		t.Errorf("header = %v, want %v", got, header)
	}

	got, err = store.ReadRange(ctx, "Users!A2:ZZ")
	if err != nil {
		t.Fatalf("ReadRange(data) error = %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("data = %v, want %v", got, rows)
	}
}

func TestStore_AppendAfterExistingRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateTable(ctx, "Users"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := store.OverwriteRange(ctx, "Users!A1:ZZ1", [][]string{{"id"}}); err != nil {
		t.Fatalf("OverwriteRange() error = %v", err)
	}
	if err := store.AppendRows(ctx, "Users!A2:ZZ", [][]string{{"1"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if err := store.AppendRows(ctx, "Users!A2:ZZ", [][]string{{"2"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	got, err := store.ReadRange(ctx, "Users!A2:ZZ")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	want := [][]string{{"1"}, {"2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}
}

func TestStore_ClearRange(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateTable(ctx, "Users"); err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	if err := store.OverwriteRange(ctx, "Users!A1:ZZ1", [][]string{{"id", "name"}}); err != nil {
		t.Fatalf("OverwriteRange() error = %v", err)
	}
	if err := store.AppendRows(ctx, "Users!A2:ZZ", [][]string{{"1", "Alice"}, {"2", "Bob"}}); err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}

	if err := store.ClearRange(ctx, "Users!A2:ZZ"); err != nil {
		t.Fatalf("ClearRange() error = %v", err)
	}

	got, err := store.ReadRange(ctx, "Users!A1:ZZ1")
	if err != nil {
		t.Fatalf("ReadRange(header) error = %v", err)
	}
	if !reflect.DeepEqual(got, [][]string{{"id", "name"}}) {
		t.Errorf("header after clear = %v, want it intact", got)
	}

	data, err := store.ReadRange(ctx, "Users!A2:ZZ")
	if err != nil {
		t.Fatalf("ReadRange(data) error = %v", err)
	}
	for _, row := range data {
		for _, cell := range row {
			if cell != "" {
				t.Errorf("data after clear still has cell %q", cell)
			}
		}
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.ReadRange(ctx, "Users!A2:ZZ"); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadRange() error = %v, want context.Canceled", err)
	}
}
