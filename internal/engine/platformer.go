package engine

import (
	"vacationtrail/internal/models"
)

// Platformer constants. Velocities are per frame at 60fps.
const (
	tileSize = 32.0

	platGravity  = 0.5
	platJumpVel  = -10.0
	platMaxSpeed = 3.0
	platAccel    = 0.5
	platFriction = 0.8

	platPlayerSize = 24.0
	platStartX     = 50.0
	platStartY     = 100.0

	platFallLimit = 320.0

	platDefaultLives = 3
)

// defaultLevel is the built-in course. '#' is solid ground, 'F' is the
// finish flag, spaces are air. Rows are tileSize tall.
var defaultLevel = []string{
	"                         ",
	"                         ",
	"                       F ",
	"                      ## ",
	"          ##             ",
	"       ##      ##  ##    ",
	"    ##                   ",
	"######   ###   ####   ###",
	"######   ###   ####   ###",
	"######   ###   ####   ###",
}

// PlatformerState is the tile-jumper state for one attempt.
type PlatformerState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	OnGround bool `json:"onGround"`
	Lives    int  `json:"lives"`
	Finished bool `json:"finished"`
	Dead     bool `json:"dead"`

	Level []string `json:"level"`
}

// PlatformerEngine drives the tile jumper. Falling off the world costs a
// life and respawns at the start; touching the flag tile wins.
type PlatformerEngine struct{}

func (e *PlatformerEngine) Kind() models.ChallengeKind { return models.KindPlatformer }

func (e *PlatformerEngine) Init(ch *models.Challenge) (*State, error) {
	lives := ch.PlatformerLives
	if lives <= 0 {
		lives = platDefaultLives
	}

	s := &State{Kind: models.KindPlatformer, Seed: newSeed()}
	s.Platformer = &PlatformerState{
		X:     platStartX,
		Y:     platStartY,
		Lives: lives,
		Level: defaultLevel,
	}
	return s, nil
}

func (e *PlatformerEngine) Tick(s *State, in Input, dt float64) {
	p := s.Platformer
	if p == nil || e.Terminal(s) != OutcomeNone {
		return
	}

	for frame := 0.0; frame < dt; frame++ {
		switch {
		case in.Left:
			p.VX -= platAccel
		case in.Right:
			p.VX += platAccel
		default:
			p.VX *= platFriction
		}
		p.VX = clamp(p.VX, -platMaxSpeed, platMaxSpeed)

		if in.Jump && p.OnGround {
			p.VY = platJumpVel
			p.OnGround = false
		}
		p.VY += platGravity

		// Horizontal movement resolves before vertical so wall pushes
		// don't cancel a landing.
		p.X += p.VX
		if hits, _ := levelCollide(p.Level, p.X, p.Y); hits {
			if p.VX > 0 {
				p.X = tileAlignLeft(p.X+platPlayerSize) - platPlayerSize
			} else if p.VX < 0 {
				p.X = tileAlignRight(p.X)
			}
			p.VX = 0
		}

		p.OnGround = false
		p.Y += p.VY
		if hits, _ := levelCollide(p.Level, p.X, p.Y); hits {
			if p.VY > 0 {
				p.Y = tileAlignLeft(p.Y+platPlayerSize) - platPlayerSize
				p.OnGround = true
			} else if p.VY < 0 {
				p.Y = tileAlignRight(p.Y)
			}
			p.VY = 0
		}

		if _, finish := levelCollide(p.Level, p.X, p.Y); finish {
			p.Finished = true
			return
		}

		if p.Y > platFallLimit {
			p.Lives--
			if p.Lives <= 0 {
				p.Dead = true
				return
			}
			p.X, p.Y, p.VX, p.VY = platStartX, platStartY, 0, 0
			p.OnGround = false
		}
	}
}

// levelCollide reports whether the player box at (x, y) overlaps a solid
// tile, and separately whether it overlaps the finish tile.
func levelCollide(level []string, x, y float64) (solid, finish bool) {
	x0 := int(x / tileSize)
	x1 := int((x + platPlayerSize - 1) / tileSize)
	y0 := int(y / tileSize)
	y1 := int((y + platPlayerSize - 1) / tileSize)

	for ty := y0; ty <= y1; ty++ {
		if ty < 0 || ty >= len(level) {
			continue
		}
		row := level[ty]
		for tx := x0; tx <= x1; tx++ {
			if tx < 0 || tx >= len(row) {
				continue
			}
			switch row[tx] {
			case '#':
				solid = true
			case 'F':
				finish = true
			}
		}
	}
	return solid, finish
}

// tileAlignLeft snaps a coordinate to the start of its tile.
func tileAlignLeft(v float64) float64 {
	return float64(int(v/tileSize)) * tileSize
}

// tileAlignRight snaps a coordinate to the start of the next tile.
func tileAlignRight(v float64) float64 {
	return float64(int(v/tileSize)+1) * tileSize
}

func (e *PlatformerEngine) Terminal(s *State) Outcome {
	p := s.Platformer
	if p == nil {
		return OutcomeNone
	}
	if p.Finished {
		return OutcomeWin
	}
	if p.Dead {
		return OutcomeLoss
	}
	return OutcomeNone
}
