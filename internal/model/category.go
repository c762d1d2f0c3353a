package model

// RawCategory is the wire form of a category.
type RawCategory struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Category is a named tag that expenditures can point at.
type Category struct {
	name string
	id   int64
}

// NewCategory builds a category from an optional raw payload.
// Only a non-empty name overrides the default empty name.
func NewCategory(raw *RawCategory) *Category {
	c := &Category{}
	if raw == nil {
		return c
	}

	if raw.ID != 0 {
		c.id = raw.ID
	}
	if raw.Name != "" {
		c.name = raw.Name
	}

	return c
}

// ID implements Identifiable.
func (c *Category) ID() int64 {
	return c.id
}

// Name returns the category name.
func (c *Category) Name() string {
	return c.name
}

// SetName replaces the category name.
func (c *Category) SetName(name string) {
	c.name = name
}

// IsReference reports whether the category can be sent to the server as a
// category reference. A nil or unnamed category means "no category".
func (c *Category) IsReference() bool {
	return c != nil && c.name != ""
}
