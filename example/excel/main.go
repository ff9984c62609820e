package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sheetorm/sheetorm"
	"github.com/sheetorm/sheetorm/adapters/excel"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	store, err := excel.New(&excel.Config{FilePath: "./blog.xlsx"})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	cached := sheetorm.NewCachedStore(store, sheetorm.DefaultConfig())

	authors := sheetorm.NewModel(cached, "authors", sheetorm.MustSchema(
		sheetorm.Column{Name: "id", Type: sheetorm.Number, AutoIncrement: true},
		sheetorm.Col("name", sheetorm.String),
	))
	posts := sheetorm.NewModel(cached, "posts", sheetorm.MustSchema(
		sheetorm.Column{Name: "id", Type: sheetorm.UUID},
		sheetorm.Col("title", sheetorm.String),
		sheetorm.Col("author_id", sheetorm.Number),
		sheetorm.Col("meta", sheetorm.JSON),
	))

	// Both directions of the relation exist, so attach them after both
	// models are built.
	if err := authors.Relate(map[string]sheetorm.Relation{
		"posts": {Kind: sheetorm.HasMany, Target: posts, ForeignKey: "author_id", LocalKey: "id"},
	}); err != nil {
		return err
	}
	if err := posts.Relate(map[string]sheetorm.Relation{
		"author": {Kind: sheetorm.BelongsTo, Target: authors, ForeignKey: "author_id", LocalKey: "id"},
	}); err != nil {
		return err
	}

	author, err := authors.Create(ctx, sheetorm.Row{"name": "Jane"})
	if err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}

	_, err = posts.CreateMany(ctx, []sheetorm.Row{
		{"title": "Hello", "author_id": author["id"], "meta": map[string]any{"tags": []any{"intro"}}},
		{"title": "Second", "author_id": author["id"]},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}

	rows, err := authors.FindMany(ctx, nil, &sheetorm.FindOptions{
		Include: map[string]any{"posts": true},
	})
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	for _, row := range rows {
		fmt.Printf("%s wrote %d post(s)\n", row.GetString("name", "?"), len(row.GetRows("posts")))
	}

	return nil
}
