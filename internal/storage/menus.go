package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/meltforce/practiceboard/internal/models"
)

// menuRow is one row of the menus table.
type menuRow struct {
	ID                 string
	Name               string
	CategoryShort      string
	Category           string
	DurationDefaultMin int
	MinP               *int
	MinIF              *int
	MinOF              *int
	MinTotal           *int
	MinPlusIF          *int
}

func (r menuRow) menu() models.Menu {
	return models.Menu{
		ID:                 r.ID,
		Name:               r.Name,
		CategoryShort:      r.CategoryShort,
		Category:           r.Category,
		DurationDefaultMin: r.DurationDefaultMin,
		Condition: models.Condition{
			MinP:      r.MinP,
			MinIF:     r.MinIF,
			MinOF:     r.MinOF,
			MinTotal:  r.MinTotal,
			MinPlusIF: r.MinPlusIF,
		},
	}
}

// GetMenus returns the enabled menus in catalog order.
func (db *DB) GetMenus(ctx context.Context) ([]models.Menu, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category_short, category, duration_default_min,
		 min_p, min_if, min_of, min_total, min_plus_if
		 FROM menus
		 WHERE enabled
		 ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("querying menus: %w", err)
	}
	defer rows.Close()

	result := []models.Menu{}
	for rows.Next() {
		var r menuRow
		if err := rows.Scan(&r.ID, &r.Name, &r.CategoryShort, &r.Category, &r.DurationDefaultMin,
			&r.MinP, &r.MinIF, &r.MinOF, &r.MinTotal, &r.MinPlusIF); err != nil {
			return nil, fmt.Errorf("scanning menu: %w", err)
		}
		result = append(result, r.menu())
	}
	return result, rows.Err()
}

// CatalogDocument renders the menus table as a catalog document.
func (db *DB) CatalogDocument(ctx context.Context) ([]byte, error) {
	menus, err := db.GetMenus(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(catalog.Document{Menus: menus})
}

// CatalogSource exposes the menus table as a catalog source.
func (db *DB) CatalogSource() configsrc.Source {
	return configsrc.Func{Label: "db:menus", Fn: db.CatalogDocument}
}
