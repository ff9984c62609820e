package sheetorm_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sheetorm/sheetorm"
)

// fakeStore is an in-memory sheetorm.Store recording call counts per range.
type fakeStore struct {
	mu     sync.Mutex
	tables map[string]*fakeTable

	// staleData makes data-range reads return nothing while writes still
	// land, imitating the backend's read-after-write lag.
	staleData bool

	// createRaces makes CreateTable report "already exists" while still
	// creating the table, imitating a lost creation race.
	createRaces bool

	reads         map[string]int
	appends       map[string]int
	overwrites    map[string]int
	clears        map[string]int
	createCalls   int
	lastAppend    [][]string
	lastOverwrite [][]string
}

type fakeTable struct {
	header []string
	data   [][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:     make(map[string]*fakeTable),
		reads:      make(map[string]int),
		appends:    make(map[string]int),
		overwrites: make(map[string]int),
		clears:     make(map[string]int),
	}
}

// seed creates a table with a header and data rows already in place.
func (s *fakeStore) seed(table string, header []string, data [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = &fakeTable{header: header, data: data}
}

func isHeaderRange(rng string) bool {
	return strings.HasSuffix(rng, "!A1:ZZ1")
}

func (s *fakeStore) ReadRange(ctx context.Context, rng string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads[rng]++
	t, ok := s.tables[sheetorm.TableOfRange(rng)]
	if !ok {
		return nil, fmt.Errorf("read %q: %w", rng, sheetorm.ErrTableNotFound)
	}
	if isHeaderRange(rng) {
		if t.header == nil {
			return [][]string{}, nil
		}
		return [][]string{append([]string(nil), t.header...)}, nil
	}
	if s.staleData {
		return [][]string{}, nil
	}
	out := make([][]string, len(t.data))
	for i, row := range t.data {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (s *fakeStore) AppendRows(ctx context.Context, rng string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appends[sheetorm.TableOfRange(rng)]++
	s.lastAppend = rows
	t, ok := s.tables[sheetorm.TableOfRange(rng)]
	if !ok {
		return fmt.Errorf("append %q: %w", rng, sheetorm.ErrTableNotFound)
	}
	t.data = append(t.data, rows...)
	return nil
}

func (s *fakeStore) OverwriteRange(ctx context.Context, rng string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overwrites[sheetorm.TableOfRange(rng)]++
	s.lastOverwrite = rows
	t, ok := s.tables[sheetorm.TableOfRange(rng)]
	if !ok {
		return fmt.Errorf("overwrite %q: %w", rng, sheetorm.ErrTableNotFound)
	}
	if isHeaderRange(rng) {
		t.header = rows[0]
		return nil
	}
	t.data = rows
	return nil
}

func (s *fakeStore) ClearRange(ctx context.Context, rng string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clears[sheetorm.TableOfRange(rng)]++
	t, ok := s.tables[sheetorm.TableOfRange(rng)]
	if !ok {
		return fmt.Errorf("clear %q: %w", rng, sheetorm.ErrTableNotFound)
	}
	if isHeaderRange(rng) {
		t.header = nil
		return nil
	}
	t.data = nil
	return nil
}

func (s *fakeStore) CreateTable(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("create %q: %w", name, sheetorm.ErrTableExists)
	}
	s.tables[name] = &fakeTable{}
	if s.createRaces {
		return fmt.Errorf("create %q: %w", name, sheetorm.ErrTableExists)
	}
	return nil
}

func (s *fakeStore) dataReads(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[sheetorm.DataRange(table)]
}
