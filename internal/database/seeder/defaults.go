package seeder

func Defaults() []Seeder {
	return []Seeder{
		CatalogSourcesSeeder{},
		DemoGrantsSeeder{},
	}
}
