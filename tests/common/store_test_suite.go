// Package common provides shared fixtures for the cross-store API test
// suites. The Excel store is always exercised; the Google Sheets store only
// when TEST_GOOGLE_SHEET_ID (and credentials) are configured.
package common

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/sheetorm/sheetorm"
	"github.com/sheetorm/sheetorm/adapters/excel"
	"github.com/sheetorm/sheetorm/adapters/googlesheets"
)

// StoreTestCase represents one backend to run the API suite against.
type StoreTestCase struct {
	Name        string
	Store       sheetorm.Store
	Description string
}

// GetTestStores builds the available backends.
func GetTestStores(t *testing.T) []StoreTestCase {
	t.Helper()

	var cases []StoreTestCase

	excelFile := filepath.Join(t.TempDir(), "api_test.xlsx")
	excelStore, err := excel.New(&excel.Config{FilePath: excelFile})
	if err != nil {
		t.Fatalf("failed to create Excel store: %v", err)
	}
	cases = append(cases, StoreTestCase{
		Name:        "Excel",
		Store:       excelStore,
		Description: fmt.Sprintf("Excel file: %s", excelFile),
	})

	spreadsheetID := os.Getenv("TEST_GOOGLE_SHEET_ID")
	if spreadsheetID != "" {
		ctx := context.Background()
		gsStore, err := googlesheets.NewWithJSONKeyFile(ctx, googlesheets.Config{
			SpreadsheetID: spreadsheetID,
			QPS:           1,
		}, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if err != nil {
			t.Fatalf("failed to create Google Sheets store: %v", err)
		}
		cases = append(cases, StoreTestCase{
			Name:        "GoogleSheets",
			Store:       gsStore,
			Description: fmt.Sprintf("Spreadsheet: %s", spreadsheetID),
		})
	}

	return cases
}

// UniqueTable returns a table name that will not collide across test runs
// sharing one spreadsheet.
func UniqueTable(prefix string) string {
	return fmt.Sprintf("%s_%06d", prefix, rand.Intn(1000000))
}

// CachedStore wraps a test store with the default read cache.
func CachedStore(store sheetorm.Store) *sheetorm.CachedStore {
	return sheetorm.NewCachedStore(store, sheetorm.DefaultConfig())
}
