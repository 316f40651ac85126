package catalog

// Default returns the built-in catalog used when no catalog file is configured.
func Default() *Catalog {
	c := &Catalog{
		Driver: Driver{
			Name:        "Ismael",
			Phone:       "(82) 99651-8468",
			Pix:         "609.950.773-63",
			City:        "Planalto da Serra - MT",
			CountryCode: defaultDriverCountryCode,
			Vehicle:     Vehicle{Model: "Sandero Branco", Plate: "QBI9I82"},
		},
		Locations: Locations{
			Urban: []Location{
				{Name: "Centro", Price: 15, Minutes: 10},
				{Name: "Hospital", Price: 20, Minutes: 15},
				{Name: "Shopping", Price: 22, Minutes: 18},
				{Name: "Escola Municipal", Price: 17, Minutes: 13},
			},
			Rural: []Location{
				{Name: "Zona Rural Norte", Price: 35, Minutes: 25},
				{Name: "Sítio São João", Price: 40, Minutes: 30},
			},
			Neighboring: []Location{
				{Name: "Cuiabá Centro", Price: 80, Minutes: 60},
				{Name: "Várzea Grande", Price: 75, Minutes: 55},
				{Name: "UFMT", Price: 88, Minutes: 68},
			},
		},
		Multipliers:       map[int]float64{1: 1.0, 2: 1.0, 3: 1.2, 4: 1.4},
		DefaultMultiplier: defaultGroupMultiplier,
		Fallback:          Fallback{Price: defaultFallbackPrice, Minutes: defaultFallbackMinutes},
	}
	c.buildIndex()
	return c
}
