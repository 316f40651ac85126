package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	CategoryUrban       = "urban"
	CategoryRural       = "rural"
	CategoryNeighboring = "neighboring"

	defaultFallbackPrice     = 30
	defaultFallbackMinutes   = 20
	defaultGroupMultiplier   = 1.4
	defaultDriverCountryCode = "55"

	// MaxPickerLocations is how many locations one picker list may offer.
	// A WhatsApp list carries at most 10 rows and one is the free text row.
	MaxPickerLocations = 9
)

// Location is a named place with a fixed base fare and travel time.
type Location struct {
	Name    string  `yaml:"name" json:"name" validate:"required"`
	Price   float64 `yaml:"price" json:"price" validate:"gt=0"`
	Minutes int     `yaml:"minutes" json:"minutes" validate:"gt=0"`
}

type Locations struct {
	Urban       []Location `yaml:"urban" json:"urban" validate:"dive"`
	Rural       []Location `yaml:"rural" json:"rural" validate:"dive"`
	Neighboring []Location `yaml:"neighboring" json:"neighboring" validate:"dive"`
}

type Vehicle struct {
	Model string `yaml:"model" json:"model" validate:"required"`
	Plate string `yaml:"plate" json:"plate" validate:"required"`
}

// Driver is the profile of the single driver served by the assistant.
type Driver struct {
	Name        string  `yaml:"name" json:"name" validate:"required"`
	Phone       string  `yaml:"phone" json:"phone" validate:"required"`
	Pix         string  `yaml:"pix" json:"pix"`
	City        string  `yaml:"city" json:"city" validate:"required"`
	CountryCode string  `yaml:"country_code" json:"country_code"`
	Vehicle     Vehicle `yaml:"vehicle" json:"vehicle"`
}

// Fallback is applied to destinations missing from the location table.
type Fallback struct {
	Price   float64 `yaml:"price" json:"price" validate:"gt=0"`
	Minutes int     `yaml:"minutes" json:"minutes" validate:"gt=0"`
}

// Catalog holds the static pricing and driver configuration. It is loaded
// once at startup and must not be mutated afterwards.
type Catalog struct {
	Driver            Driver          `yaml:"driver" json:"driver"`
	Locations         Locations       `yaml:"locations" json:"locations"`
	Multipliers       map[int]float64 `yaml:"passenger_multipliers" json:"passenger_multipliers" validate:"dive,keys,gt=0,endkeys,gte=1"`
	DefaultMultiplier float64         `yaml:"default_multiplier" json:"default_multiplier" validate:"gte=1"`
	Fallback          Fallback        `yaml:"fallback" json:"fallback"`

	index map[string]Location
}

var validate = validator.New()

// Load reads a catalog from a YAML file. An empty path yields Default().
// Zero-valued sections of the file are filled from the defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.buildIndex()

	return &c, nil
}

func (c *Catalog) applyDefaults() {
	def := Default()
	if c.Driver == (Driver{}) {
		c.Driver = def.Driver
	}
	if c.Driver.CountryCode == "" {
		c.Driver.CountryCode = defaultDriverCountryCode
	}
	if len(c.Locations.Urban)+len(c.Locations.Rural)+len(c.Locations.Neighboring) == 0 {
		c.Locations = def.Locations
	}
	if len(c.Multipliers) == 0 {
		c.Multipliers = def.Multipliers
	}
	if c.DefaultMultiplier == 0 {
		c.DefaultMultiplier = defaultGroupMultiplier
	}
	if c.Fallback.Price == 0 {
		c.Fallback.Price = defaultFallbackPrice
	}
	if c.Fallback.Minutes == 0 {
		c.Fallback.Minutes = defaultFallbackMinutes
	}
}

// Validate checks field constraints and that location names are unique
// across all categories.
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	seen := make(map[string]bool)
	for _, l := range c.All() {
		if seen[l.Name] {
			return fmt.Errorf("invalid catalog: duplicate location %q", l.Name)
		}
		seen[l.Name] = true
	}
	if n := len(c.OriginLocations()); n > MaxPickerLocations {
		return fmt.Errorf("invalid catalog: %d origin locations, at most %d fit in a list", n, MaxPickerLocations)
	}
	if n := len(c.All()); n > MaxPickerLocations {
		return fmt.Errorf("invalid catalog: %d destination locations, at most %d fit in a list", n, MaxPickerLocations)
	}
	return nil
}

func (c *Catalog) buildIndex() {
	c.index = make(map[string]Location)
	for _, l := range c.All() {
		c.index[l.Name] = l
	}
}

// All returns every location: urban first, then rural, then neighboring.
func (c *Catalog) All() []Location {
	all := make([]Location, 0, len(c.Locations.Urban)+len(c.Locations.Rural)+len(c.Locations.Neighboring))
	all = append(all, c.Locations.Urban...)
	all = append(all, c.Locations.Rural...)
	all = append(all, c.Locations.Neighboring...)
	return all
}

// OriginLocations returns the departure points: urban, then rural.
func (c *Catalog) OriginLocations() []Location {
	origins := make([]Location, 0, len(c.Locations.Urban)+len(c.Locations.Rural))
	origins = append(origins, c.Locations.Urban...)
	return append(origins, c.Locations.Rural...)
}

// Find looks a location up by its exact name.
func (c *Catalog) Find(name string) (Location, bool) {
	if c.index != nil {
		l, ok := c.index[name]
		return l, ok
	}
	for _, l := range c.All() {
		if l.Name == name {
			return l, true
		}
	}
	return Location{}, false
}

// Multiplier returns the fare multiplier for a passenger count.
func (c *Catalog) Multiplier(passengers int) float64 {
	if m, ok := c.Multipliers[passengers]; ok {
		return m
	}
	return c.DefaultMultiplier
}

// MinPrice returns the cheapest base fare of a category, or 0 when empty.
func (c *Catalog) MinPrice(category string) float64 {
	var list []Location
	switch category {
	case CategoryUrban:
		list = c.Locations.Urban
	case CategoryRural:
		list = c.Locations.Rural
	case CategoryNeighboring:
		list = c.Locations.Neighboring
	}
	min := 0.0
	for i, l := range list {
		if i == 0 || l.Price < min {
			min = l.Price
		}
	}
	return min
}

// WhatsAppID converts the driver phone into a WhatsApp recipient id:
// digits only, prefixed with the country code unless already present.
func (d Driver) WhatsAppID() string {
	var sb strings.Builder
	for _, ch := range d.Phone {
		if ch >= '0' && ch <= '9' {
			sb.WriteRune(ch)
		}
	}
	digits := sb.String()
	if d.CountryCode != "" && !strings.HasPrefix(digits, d.CountryCode) {
		digits = d.CountryCode + digits
	}
	return digits
}
