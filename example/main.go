package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sheetorm/sheetorm"
	"github.com/sheetorm/sheetorm/adapters/googlesheets"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Initialize the Google Sheets store with a JSON key file
	store, err := googlesheets.NewWithJSONKeyFile(ctx, googlesheets.Config{
		SpreadsheetID: "your-spreadsheet-id",
		QPS:           1,
	}, "./service-account.json")
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	// Wrap it with a read cache shared by every model of this spreadsheet
	cached := sheetorm.NewCachedStore(store, &sheetorm.Config{
		CacheTTL:     5 * time.Second,
		MaxCacheSize: 32,
	})

	users := sheetorm.NewModel(cached, "users", sheetorm.MustSchema(
		sheetorm.Column{Name: "id", Type: sheetorm.Number, AutoIncrement: true},
		sheetorm.Col("name", sheetorm.String),
		sheetorm.Column{Name: "email", Type: sheetorm.String, Unique: true},
		sheetorm.Col("age", sheetorm.Number),
		sheetorm.Column{Name: "created_at", Type: sheetorm.Date, CreatedAt: true},
		sheetorm.Column{Name: "deleted_at", Type: sheetorm.Date, DeletedAt: true},
	))

	// Create a user
	user, err := users.Create(ctx, sheetorm.Row{
		"name":  "John Doe",
		"email": "john@example.com",
		"age":   30,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Printf("Added user with id %v\n", user["id"])

	// Query users aged 25 to 35
	results, err := users.FindMany(ctx, sheetorm.Filter{
		"age": sheetorm.Cond{Gte: 25, Lte: 35},
	}, &sheetorm.FindOptions{
		SortBy: "age",
		Limit:  10,
	})
	if err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	for _, row := range results {
		fmt.Printf("- %s (%v)\n", row.GetString("name", "?"), row.GetNumber("age", 0))
	}

	// Soft delete by email
	count, err := users.Delete(ctx, sheetorm.Filter{"email": "john@example.com"}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	fmt.Printf("Soft-deleted %d user(s)\n", count)

	return nil
}
