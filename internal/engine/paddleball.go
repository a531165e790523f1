package engine

import (
	"vacationtrail/internal/models"
)

// Paddle ball constants. Velocities are per frame at 60fps.
const (
	paddleCourtWidth  = 400.0
	paddleCourtHeight = 320.0

	paddleX      = 10.0
	paddleWidth  = 10.0
	paddleHeight = 60.0

	ballRadius = 6.0

	// Ball speed-up factor per paddle hit; uncapped on purpose so long
	// rallies get genuinely hard.
	ballAccel = 1.05

	paddleReadyFrames = 90 // 1.5s serve pause

	paddleDefaultLives     = 3
	paddleDefaultThreshold = 10
)

func ballBaseSpeed(speed models.BallSpeed) float64 {
	switch speed {
	case models.SpeedSlow:
		return 3
	case models.SpeedFast:
		return 6
	default:
		return 4
	}
}

// PaddleBallState is the wall-rally state for one attempt. Each paddle hit
// scores a point; each miss costs a life and resets the score to zero.
type PaddleBallState struct {
	BallX float64 `json:"ballX"`
	BallY float64 `json:"ballY"`
	VelX  float64 `json:"velX"`
	VelY  float64 `json:"velY"`

	PaddleY float64 `json:"paddleY"`

	Score     int     `json:"score"`
	Lives     int     `json:"lives"`
	Threshold int     `json:"threshold"`
	BaseSpeed float64 `json:"baseSpeed"`

	ReadyFrames float64 `json:"readyFrames"`
}

// PaddleBallEngine drives the single-player wall rally. There is no timer;
// the attempt ends only by reaching the threshold or running out of lives.
type PaddleBallEngine struct{}

func (e *PaddleBallEngine) Kind() models.ChallengeKind { return models.KindPaddleBall }

func (e *PaddleBallEngine) Init(ch *models.Challenge) (*State, error) {
	lives := ch.BallLives
	if lives <= 0 {
		lives = paddleDefaultLives
	}
	threshold := ch.BallThreshold
	if threshold <= 0 {
		threshold = paddleDefaultThreshold
	}

	s := &State{Kind: models.KindPaddleBall, Seed: newSeed()}
	s.Paddle = &PaddleBallState{
		PaddleY:     paddleCourtHeight/2 - paddleHeight/2,
		Lives:       lives,
		Threshold:   threshold,
		BaseSpeed:   ballBaseSpeed(ch.BallSpeed),
		ReadyFrames: paddleReadyFrames,
	}
	servePaddleBall(s)
	return s, nil
}

func servePaddleBall(s *State) {
	p := s.Paddle
	p.BallX = paddleCourtWidth / 2
	p.BallY = paddleCourtHeight / 2
	p.VelX = -p.BaseSpeed
	p.VelY = (s.rand().Float64() - 0.5) * p.BaseSpeed
}

func (e *PaddleBallEngine) Tick(s *State, in Input, dt float64) {
	p := s.Paddle
	if p == nil || e.Terminal(s) != OutcomeNone {
		return
	}

	if in.PaddleY != nil {
		p.PaddleY = clamp(*in.PaddleY, 0, paddleCourtHeight-paddleHeight)
	}

	for frame := 0.0; frame < dt; frame++ {
		if p.ReadyFrames > 0 {
			p.ReadyFrames--
			continue
		}

		p.BallX += p.VelX
		p.BallY += p.VelY

		// Top and bottom walls.
		if p.BallY-ballRadius < 0 {
			p.BallY = ballRadius
			p.VelY = -p.VelY
		} else if p.BallY+ballRadius > paddleCourtHeight {
			p.BallY = paddleCourtHeight - ballRadius
			p.VelY = -p.VelY
		}

		// Right wall.
		if p.BallX+ballRadius > paddleCourtWidth {
			p.BallX = paddleCourtWidth - ballRadius
			p.VelX = -p.VelX
		}

		// Paddle.
		if p.VelX < 0 &&
			p.BallX-ballRadius <= paddleX+paddleWidth &&
			p.BallX-ballRadius > paddleX &&
			p.BallY >= p.PaddleY && p.BallY <= p.PaddleY+paddleHeight {
			p.VelX = -p.VelX * ballAccel
			p.BallX = paddleX + paddleWidth + ballRadius + 2
			p.VelY += (s.rand().Float64() - 0.5) * 2
			p.Score++
			if p.Score >= p.Threshold {
				return
			}
		}

		// Miss.
		if p.BallX+ballRadius < 0 {
			p.Lives--
			p.Score = 0
			if p.Lives > 0 {
				p.ReadyFrames = paddleReadyFrames
				servePaddleBall(s)
			}
			return
		}
	}
}

func (e *PaddleBallEngine) Terminal(s *State) Outcome {
	p := s.Paddle
	if p == nil {
		return OutcomeNone
	}
	if p.Score >= p.Threshold {
		return OutcomeWin
	}
	if p.Lives <= 0 {
		return OutcomeLoss
	}
	return OutcomeNone
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
