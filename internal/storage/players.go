package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/roster"
)

// playerRow is one row of the players table.
type playerRow struct {
	ID           string
	Name         string
	Position     *string
	SubPositions []string
	Skills       []string
	CanCatch     bool
}

func (r playerRow) player() models.Player {
	p := models.Player{
		ID:           r.ID,
		Name:         r.Name,
		Position:     r.Position,
		SubPositions: r.SubPositions,
	}
	if len(r.Skills) > 0 || r.CanCatch {
		p.Attributes = &models.PlayerAttributes{Skills: r.Skills, CanCatch: r.CanCatch}
	}
	return p
}

// GetPlayers returns the active roster in display order.
func (db *DB) GetPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, position, sub_positions, skills, can_catch
		 FROM players
		 WHERE active
		 ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	result := []models.Player{}
	for rows.Next() {
		var r playerRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Position, &r.SubPositions, &r.Skills, &r.CanCatch); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		result = append(result, r.player())
	}
	return result, rows.Err()
}

// RosterDocument renders the players table as a roster document.
func (db *DB) RosterDocument(ctx context.Context) ([]byte, error) {
	players, err := db.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(roster.Document{Players: players})
}

// RosterSource exposes the players table as a roster source.
func (db *DB) RosterSource() configsrc.Source {
	return configsrc.Func{Label: "db:players", Fn: db.RosterDocument}
}
