package schema

// CityTable represents the 'catalog.city' table
type CityTable struct {
	Table     string
	ID        string
	Name      string
	Country   string
	Slug      string
	CreatedAt string
}

// City is the schema definition for catalog.city
var City = CityTable{
	Table:     "catalog.city",
	ID:        "id",
	Name:      "name",
	Country:   "country",
	Slug:      "slug",
	CreatedAt: "created_at",
}

func (t CityTable) Columns() []string { return []string{t.ID, t.Name, t.Country, t.Slug} }
