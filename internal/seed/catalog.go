package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"cinesocial/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed genres.yml
var genresYAML []byte

// Catalog is the reference data shipped with the seeder.
type Catalog struct {
	Genres []string `yaml:"genres"`
}

// LoadCatalog parses a catalog document, dropping blank and duplicate genre names.
func LoadCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Genres))
	genres := c.Genres[:0]
	for _, name := range c.Genres {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		genres = append(genres, name)
	}
	c.Genres = genres
	return &c, nil
}

// DefaultCatalog returns the embedded genre list.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(genresYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Genres inserts the catalog genres, leaving existing rows untouched, and returns
// every genre in id order.
func Genres(db *gorm.DB, catalog *Catalog) ([]models.Genre, error) {
	for _, name := range catalog.Genres {
		genre := models.Genre{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&genre).Error; err != nil {
			return nil, fmt.Errorf("seed genre %q: %w", name, err)
		}
	}

	var genres []models.Genre
	if err := db.Order("id ASC").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}
