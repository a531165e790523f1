package models

// TileType is the effect a board tile applies when landed on.
type TileType string

const (
	TileNormal         TileType = "NORMAL"
	TileForwardOne     TileType = "FORWARD_1"
	TileBackOne        TileType = "BACK_1"
	TileChooseForward  TileType = "CHOOSE_FORWARD"
	TileChooseBack     TileType = "CHOOSE_BACK"
	TileExtraChallenge TileType = "EXTRA_CHALLENGE"
	TileFinish         TileType = "FINISH"
)

// TotalTiles is the track length; positions are clamped to [1, TotalTiles].
const TotalTiles = 30

// Tile is one board square.
type Tile struct {
	ID    int      `json:"id"`
	Type  TileType `json:"type"`
	Label string   `json:"label,omitempty"`
}

// DefaultBoardLayout builds the standard 30-tile track: finish at the end,
// turbo every 5th tile, slides at 3/12/21, bonus challenges at 7/18, and the
// boost/trap interaction tiles at 15/25.
func DefaultBoardLayout() []Tile {
	tiles := make([]Tile, TotalTiles)
	for i := range tiles {
		id := i + 1
		t := Tile{ID: id, Type: TileNormal}
		switch {
		case id == TotalTiles:
			t.Type = TileFinish
		case id%5 == 0:
			t.Type = TileForwardOne
			t.Label = "+1 Space"
		case id == 3 || id == 12 || id == 21:
			t.Type = TileBackOne
			t.Label = "-1 Space"
		case id == 7 || id == 18:
			t.Type = TileExtraChallenge
			t.Label = "Bonus?"
		case id == 15:
			t.Type = TileChooseForward
			t.Label = "Boost Friend"
		case id == 25:
			t.Type = TileChooseBack
			t.Label = "Trap Friend"
		}
		tiles[i] = t
	}
	return tiles
}

// ClampPosition keeps a track position inside the valid range.
func ClampPosition(pos int) int {
	if pos < 1 {
		return 1
	}
	if pos > TotalTiles {
		return TotalTiles
	}
	return pos
}
