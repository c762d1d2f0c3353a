// Package categories builds category listings for tests, either as API
// results or seeded into a fake server.
//
// Example usage:
//
//	results := categories.NewBuilder().
//		WithFixture(categories.FixtureMinimal).
//		WithCategory("Custom").
//		Results()
package categories

import (
	"testing"

	"github.com/Veraticus/budgetr/internal/api/apitest"
	"github.com/Veraticus/budgetr/internal/model"
)

// CategoryName is a category name used by tests.
type CategoryName string

// String returns the string representation of the category name.
func (c CategoryName) String() string {
	return string(c)
}

// Common category names used across tests.
const (
	CategoryFood      CategoryName = "Food"
	CategoryGroceries CategoryName = "Groceries"
	CategoryRent      CategoryName = "Rent"
	CategoryTravel    CategoryName = "Travel"
	CategoryUtilities CategoryName = "Utilities"
	CategoryTransport CategoryName = "Transportation"
)

// Category is a built category with the id it was given.
type Category struct {
	Name CategoryName
	ID   int64
}

// Categories is an ordered list of built categories.
type Categories []Category

// Find returns the category with the given name, or nil.
func (c Categories) Find(name CategoryName) *Category {
	for i := range c {
		if c[i].Name == name {
			return &c[i]
		}
	}
	return nil
}

// MustFind returns the category with the given name or fails the test.
func (c Categories) MustFind(t *testing.T, name CategoryName) Category {
	t.Helper()
	found := c.Find(name)
	if found == nil {
		t.Fatalf("category %q not found", name)
	}
	return *found
}

// Builder collects category names in insertion order. Names added twice are
// kept once.
type Builder struct {
	seen  map[CategoryName]bool
	names []CategoryName
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[CategoryName]bool)}
}

// WithCategory adds a single category.
func (b *Builder) WithCategory(name CategoryName) *Builder {
	if !b.seen[name] {
		b.seen[name] = true
		b.names = append(b.names, name)
	}
	return b
}

// WithCategories adds multiple categories.
func (b *Builder) WithCategories(names ...CategoryName) *Builder {
	for _, name := range names {
		b.WithCategory(name)
	}
	return b
}

// WithFixture adds the categories of a fixture.
func (b *Builder) WithFixture(fixture Fixture) *Builder {
	return b.WithCategories(fixture.Categories()...)
}

// Build numbers the categories from 1 in insertion order.
func (b *Builder) Build() Categories {
	built := make(Categories, 0, len(b.names))
	for i, name := range b.names {
		built = append(built, Category{ID: int64(i + 1), Name: name})
	}
	return built
}

// Results returns the categories as a listing response.
func (b *Builder) Results() *model.Results[*model.Category] {
	data := make([]*model.Category, 0, len(b.names))
	for _, c := range b.Build() {
		data = append(data, model.NewCategory(&model.RawCategory{ID: c.ID, Name: c.Name.String()}))
	}
	return &model.Results[*model.Category]{Meta: model.Meta{}, Data: data}
}

// Seed creates the categories on a fake server and returns them with the ids
// the server assigned.
func (b *Builder) Seed(server *apitest.Server) Categories {
	seeded := make(Categories, 0, len(b.names))
	for _, name := range b.names {
		seeded = append(seeded, Category{ID: server.AddCategory(name.String()), Name: name})
	}
	return seeded
}
