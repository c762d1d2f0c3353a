package categories

// Fixture is a predefined set of categories.
type Fixture interface {
	Name() string
	Categories() []CategoryName
}

type fixture struct {
	name       string
	categories []CategoryName
}

func (f *fixture) Name() string               { return f.name }
func (f *fixture) Categories() []CategoryName { return f.categories }

// Predefined fixtures.
var (
	// FixtureMinimal is enough for most listing and report tests.
	FixtureMinimal Fixture = &fixture{
		name: "Minimal",
		categories: []CategoryName{
			CategoryTravel,
			CategoryFood,
			CategoryRent,
		},
	}

	// FixtureHousehold covers recurring household spending.
	FixtureHousehold Fixture = &fixture{
		name: "Household",
		categories: []CategoryName{
			CategoryRent,
			CategoryUtilities,
			CategoryGroceries,
			CategoryTransport,
		},
	}
)
