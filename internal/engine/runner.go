package engine

import (
	"vacationtrail/internal/models"
)

// Runner physics constants. Velocities are per frame at 60fps.
const (
	runnerWidth  = 400.0
	runnerHeight = 320.0

	runnerGravity   = 0.5
	runnerScroll    = 2.5
	runnerFlapVel   = -7.0
	runnerLaunchVel = -6.0

	runnerBirdX    = 50.0
	runnerBirdSize = 30.0

	runnerPipeWidth   = 50.0
	runnerPipeGap     = 140.0
	runnerPipeSpacing = 250.0

	runnerDefaultLives     = 2
	runnerDefaultThreshold = 10
)

// Pipe is one obstacle pair; GapY is the top of the gap.
type Pipe struct {
	X      float64 `json:"x"`
	GapY   float64 `json:"gapY"`
	Scored bool    `json:"scored"`
}

// RunnerState is the side-scroller state for one attempt.
type RunnerState struct {
	BirdY     float64 `json:"birdY"`
	VelY      float64 `json:"velY"`
	Pipes     []Pipe  `json:"pipes"`
	Score     int     `json:"score"`
	Lives     int     `json:"lives"`
	Threshold int     `json:"threshold"`
	Running   bool    `json:"running"`
	Dead      bool    `json:"dead"`
}

// RunnerEngine drives the flappy side-scroller. The bird holds position
// until the first flap launches the run; crashing with lives remaining soft
// resets the course, score included, so each life is a fresh run.
type RunnerEngine struct{}

func (e *RunnerEngine) Kind() models.ChallengeKind { return models.KindRunner }

func (e *RunnerEngine) Init(ch *models.Challenge) (*State, error) {
	lives := ch.RunnerLives
	if lives <= 0 {
		lives = runnerDefaultLives
	}
	threshold := ch.RunnerThreshold
	if threshold <= 0 {
		threshold = runnerDefaultThreshold
	}

	s := &State{Kind: models.KindRunner, Seed: newSeed()}
	s.Runner = &RunnerState{
		Lives:     lives,
		Threshold: threshold,
	}
	resetRunnerCourse(s)
	return s, nil
}

func resetRunnerCourse(s *State) {
	r := s.Runner
	r.BirdY = runnerHeight/2 - runnerBirdSize/2
	r.VelY = 0
	r.Score = 0
	r.Running = false
	r.Pipes = r.Pipes[:0]
	for i := 0; i < 3; i++ {
		r.Pipes = append(r.Pipes, Pipe{
			X:    runnerWidth + float64(i)*runnerPipeSpacing,
			GapY: runnerGapY(s),
		})
	}
}

func runnerGapY(s *State) float64 {
	// Keep the gap fully on screen with a margin at both edges.
	const margin = 20.0
	return margin + s.rand().Float64()*(runnerHeight-runnerPipeGap-2*margin)
}

func (e *RunnerEngine) Tick(s *State, in Input, dt float64) {
	r := s.Runner
	if r == nil || e.Terminal(s) != OutcomeNone {
		return
	}

	if in.Flap {
		if !r.Running {
			r.Running = true
			r.VelY = runnerLaunchVel
		} else {
			r.VelY = runnerFlapVel
		}
	}
	if !r.Running {
		return
	}

	for frame := 0.0; frame < dt; frame++ {
		r.VelY += runnerGravity
		r.BirdY += r.VelY

		crashed := r.BirdY < 0 || r.BirdY+runnerBirdSize > runnerHeight

		for i := range r.Pipes {
			p := &r.Pipes[i]
			p.X -= runnerScroll

			if !p.Scored && p.X+runnerPipeWidth < runnerBirdX {
				p.Scored = true
				r.Score++
			}

			if birdHitsPipe(r.BirdY, p) {
				crashed = true
			}

			// Recycle pipes that leave the screen.
			if p.X+runnerPipeWidth < 0 {
				p.X += float64(len(r.Pipes)) * runnerPipeSpacing
				p.GapY = runnerGapY(s)
				p.Scored = false
			}
		}

		if r.Score >= r.Threshold {
			return
		}
		if crashed {
			r.Lives--
			if r.Lives <= 0 {
				r.Dead = true
			} else {
				resetRunnerCourse(s)
			}
			return
		}
	}
}

func birdHitsPipe(birdY float64, p *Pipe) bool {
	if runnerBirdX+runnerBirdSize <= p.X || runnerBirdX >= p.X+runnerPipeWidth {
		return false
	}
	return birdY < p.GapY || birdY+runnerBirdSize > p.GapY+runnerPipeGap
}

func (e *RunnerEngine) Terminal(s *State) Outcome {
	r := s.Runner
	if r == nil {
		return OutcomeNone
	}
	if r.Score >= r.Threshold {
		return OutcomeWin
	}
	if r.Dead {
		return OutcomeLoss
	}
	return OutcomeNone
}
