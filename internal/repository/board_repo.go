package repository

import (
	"fmt"

	"vacationtrail/internal/database"
	"vacationtrail/internal/models"
)

// BoardRepository handles database operations for the board layout
type BoardRepository struct {
	db *database.DB
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *database.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// GetTiles retrieves the board in tile order
func (r *BoardRepository) GetTiles() ([]models.Tile, error) {
	query := "SELECT id, type, label FROM board_tiles ORDER BY id ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query board tiles: %w", err)
	}
	defer rows.Close()

	var tiles []models.Tile
	for rows.Next() {
		var tile models.Tile
		if err := rows.Scan(&tile.ID, &tile.Type, &tile.Label); err != nil {
			return nil, fmt.Errorf("failed to scan board tile: %w", err)
		}
		tiles = append(tiles, tile)
	}
	return tiles, rows.Err()
}

// GetTile retrieves one tile by id
func (r *BoardRepository) GetTile(id int) (*models.Tile, error) {
	tiles, err := r.GetTiles()
	if err != nil {
		return nil, err
	}
	for i := range tiles {
		if tiles[i].ID == id {
			return &tiles[i], nil
		}
	}
	return nil, nil
}

// SaveLayout replaces the whole board
func (r *BoardRepository) SaveLayout(tiles []models.Tile) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin board save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM board_tiles"); err != nil {
		return fmt.Errorf("failed to clear board: %w", err)
	}
	for _, tile := range tiles {
		if _, err := tx.Exec("INSERT INTO board_tiles (id, type, label) VALUES (?, ?, ?)",
			tile.ID, tile.Type, tile.Label); err != nil {
			return fmt.Errorf("failed to insert tile %d: %w", tile.ID, err)
		}
	}
	return tx.Commit()
}
