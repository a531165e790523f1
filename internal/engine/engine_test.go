package engine

import (
	"testing"
	"time"

	"vacationtrail/internal/models"
)

func TestLookup(t *testing.T) {
	kinds := []models.ChallengeKind{
		models.KindRunner,
		models.KindPaddleBall,
		models.KindPlatformer,
		models.KindMemory,
		models.KindWordGuess,
		models.KindSequentialQuiz,
		models.KindWordGroups,
	}
	for _, kind := range kinds {
		e, err := Lookup(kind)
		if err != nil {
			t.Errorf("Lookup(%s) error = %v", kind, err)
			continue
		}
		if e.Kind() != kind {
			t.Errorf("Lookup(%s).Kind() = %s", kind, e.Kind())
		}
	}

	if _, err := Lookup(models.KindTextAnswer); err == nil {
		t.Error("Lookup(TEXT) should fail; text answers have no engine")
	}
}

func TestRunnerInitDefaults(t *testing.T) {
	e := &RunnerEngine{}
	s, err := e.Init(&models.Challenge{Kind: models.KindRunner})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	r := s.Runner
	if r.Lives != 2 {
		t.Errorf("default lives = %d, want 2", r.Lives)
	}
	if r.Threshold != 10 {
		t.Errorf("default threshold = %d, want 10", r.Threshold)
	}
	if r.Running {
		t.Error("bird should wait for the first flap")
	}
	if len(r.Pipes) != 3 {
		t.Errorf("pipes = %d, want 3", len(r.Pipes))
	}
	if e.Terminal(s) != OutcomeNone {
		t.Error("fresh state should not be terminal")
	}
}

func TestRunnerIdleUntilFirstFlap(t *testing.T) {
	e := &RunnerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindRunner})
	startY := s.Runner.BirdY

	e.Tick(s, Input{}, 30)
	if s.Runner.BirdY != startY {
		t.Error("bird moved before the first flap")
	}

	e.Tick(s, Input{Flap: true}, 1)
	if !s.Runner.Running {
		t.Error("first flap should start the run")
	}
	if s.Runner.BirdY >= startY {
		t.Error("bird should rise after launch")
	}
}

func TestRunnerCrashSoftResetsCourse(t *testing.T) {
	e := &RunnerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindRunner, RunnerLives: 2})
	r := s.Runner
	r.Running = true
	r.Score = 4
	r.BirdY = runnerHeight - runnerBirdSize - 0.1
	r.VelY = 5

	e.Tick(s, Input{}, 1)

	if r.Lives != 1 {
		t.Errorf("lives = %d, want 1 after crash", r.Lives)
	}
	if r.Score != 0 {
		t.Errorf("score = %d, want 0; every life starts a fresh run", r.Score)
	}
	if r.Running {
		t.Error("course should reset to the waiting state")
	}
	if e.Terminal(s) != OutcomeNone {
		t.Error("crash with a life left is not terminal")
	}

	// Crash again on the last life.
	r.Running = true
	r.BirdY = runnerHeight - runnerBirdSize - 0.1
	r.VelY = 5
	e.Tick(s, Input{}, 1)
	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS after final crash", e.Terminal(s))
	}
}

func TestRunnerThresholdWin(t *testing.T) {
	e := &RunnerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindRunner, RunnerThreshold: 3})
	s.Runner.Score = 3
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN at threshold", e.Terminal(s))
	}
}

func TestPaddleBallSpeeds(t *testing.T) {
	tests := []struct {
		speed models.BallSpeed
		want  float64
	}{
		{models.SpeedSlow, 3},
		{models.SpeedMedium, 4},
		{models.SpeedFast, 6},
		{"", 4},
	}
	for _, tt := range tests {
		if got := ballBaseSpeed(tt.speed); got != tt.want {
			t.Errorf("ballBaseSpeed(%q) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestPaddleBallMissResetsScore(t *testing.T) {
	e := &PaddleBallEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPaddleBall, BallThreshold: 5, BallLives: 3})
	p := s.Paddle

	p.ReadyFrames = 0
	p.Score = 3
	p.BallX = 2
	p.BallY = 200
	p.VelX = -9
	p.VelY = 0
	p.PaddleY = 0 // paddle far from the ball

	e.Tick(s, Input{}, 1)

	if p.Lives != 2 {
		t.Errorf("lives = %d, want 2 after miss", p.Lives)
	}
	if p.Score != 0 {
		t.Errorf("score = %d, want 0 after miss", p.Score)
	}
	if p.ReadyFrames != paddleReadyFrames {
		t.Errorf("readyFrames = %v, want %v serve pause", p.ReadyFrames, float64(paddleReadyFrames))
	}
}

func TestPaddleBallHitScoresAndAccelerates(t *testing.T) {
	e := &PaddleBallEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPaddleBall, BallThreshold: 5})
	p := s.Paddle

	p.ReadyFrames = 0
	p.Score = 4
	p.PaddleY = 130
	p.BallX = 30
	p.BallY = 160
	p.VelX = -4
	p.VelY = 0

	e.Tick(s, Input{}, 1)

	if p.Score != 5 {
		t.Fatalf("score = %d, want 5 after paddle hit", p.Score)
	}
	if p.VelX <= 4 {
		t.Errorf("velX = %v, want accelerated rebound > 4", p.VelX)
	}
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN at threshold", e.Terminal(s))
	}
}

func TestPaddleBallLossAfterThreeMisses(t *testing.T) {
	e := &PaddleBallEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPaddleBall, BallThreshold: 5, BallLives: 3})
	p := s.Paddle

	for i := 0; i < 3; i++ {
		if e.Terminal(s) != OutcomeNone {
			t.Fatalf("terminal too early at miss %d", i)
		}
		p.ReadyFrames = 0
		p.BallX = 2
		p.BallY = 200
		p.VelX = -9
		p.VelY = 0
		p.PaddleY = 0
		e.Tick(s, Input{}, 1)
	}

	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS after three misses", e.Terminal(s))
	}
}

func TestPaddleBallInputClamped(t *testing.T) {
	e := &PaddleBallEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPaddleBall})

	y := 900.0
	e.Tick(s, Input{PaddleY: &y}, 1)
	if got := s.Paddle.PaddleY; got != paddleCourtHeight-paddleHeight {
		t.Errorf("paddleY = %v, want clamped to %v", got, paddleCourtHeight-paddleHeight)
	}
}

func TestPlatformerThirdFallLoses(t *testing.T) {
	e := &PlatformerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPlatformer, PlatformerLives: 3})
	p := s.Platformer

	for fall := 1; fall <= 3; fall++ {
		p.Y = platFallLimit + 10
		e.Tick(s, Input{}, 1)

		if fall < 3 {
			if p.Lives != 3-fall {
				t.Errorf("after fall %d: lives = %d, want %d", fall, p.Lives, 3-fall)
			}
			if p.X != platStartX || p.Y != platStartY {
				t.Errorf("after fall %d: position = (%v, %v), want respawn at start", fall, p.X, p.Y)
			}
			if e.Terminal(s) != OutcomeNone {
				t.Fatalf("after fall %d: terminal too early", fall)
			}
		}
	}

	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS on third fall", e.Terminal(s))
	}
}

func TestPlatformerReachFlagWins(t *testing.T) {
	e := &PlatformerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPlatformer})
	p := s.Platformer

	// Drop the player onto the flag tile.
	p.X = 23 * tileSize
	p.Y = 2 * tileSize
	e.Tick(s, Input{}, 1)

	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN on flag", e.Terminal(s))
	}
}

func TestPlatformerLandsOnGround(t *testing.T) {
	e := &PlatformerEngine{}
	s, _ := e.Init(&models.Challenge{Kind: models.KindPlatformer})
	p := s.Platformer

	// Start just above the ground at row 7 (y = 224).
	p.X = 32
	p.Y = 190
	for i := 0; i < 120 && !p.OnGround; i++ {
		e.Tick(s, Input{}, 1)
	}

	if !p.OnGround {
		t.Fatal("player never landed")
	}
	if want := 7*tileSize - platPlayerSize; p.Y != want {
		t.Errorf("landed at y = %v, want %v", p.Y, want)
	}
}

func TestMemoryMatchAndMismatch(t *testing.T) {
	e := &MemoryEngine{}
	s, err := e.Init(&models.Challenge{Kind: models.KindMemory, MemoryImages: []string{"sun", "wave"}})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	m := s.Memory
	if len(m.Cards) != 4 {
		t.Fatalf("cards = %d, want 4", len(m.Cards))
	}

	// Index the shuffled deck by value.
	byValue := map[string][]int{}
	for i, c := range m.Cards {
		byValue[c.Value] = append(byValue[c.Value], i)
	}
	suns := byValue["sun"]
	waves := byValue["wave"]

	// Mismatch: one of each.
	flip(e, s, suns[0])
	flip(e, s, waves[0])
	if m.LockFrames == 0 {
		t.Fatal("mismatch should lock the board")
	}

	// Input is ignored while locked.
	flip(e, s, suns[1])
	if m.Cards[suns[1]].FaceUp {
		t.Error("flip during lock should be ignored")
	}

	e.Tick(s, Input{}, memoryLockFrames+1)
	if m.Cards[suns[0]].FaceUp || m.Cards[waves[0]].FaceUp {
		t.Error("mismatched cards should flip back after the lock")
	}

	// Match both pairs.
	flip(e, s, suns[0])
	flip(e, s, suns[1])
	if !m.Cards[suns[0]].Matched || !m.Cards[suns[1]].Matched {
		t.Error("matching pair should lock in")
	}
	if e.Terminal(s) != OutcomeNone {
		t.Error("terminal too early with one pair left")
	}

	flip(e, s, waves[0])
	flip(e, s, waves[1])
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN with all pairs matched", e.Terminal(s))
	}
}

func flip(e *MemoryEngine, s *State, idx int) {
	e.Tick(s, Input{FlipIndex: &idx}, 0)
}

func TestWordGuessWinAndLoss(t *testing.T) {
	e := &WordGuessEngine{}

	wrong := []models.LetterMark{
		models.MarkAbsent, models.MarkAbsent, models.MarkAbsent,
		models.MarkAbsent, models.MarkAbsent,
	}
	right := []models.LetterMark{
		models.MarkCorrect, models.MarkCorrect, models.MarkCorrect,
		models.MarkCorrect, models.MarkCorrect,
	}

	// Solve on the third try.
	s, _ := e.Init(&models.Challenge{Kind: models.KindWordGuess})
	e.Tick(s, Input{GuessWord: "boost", GuessMarks: wrong}, 0)
	e.Tick(s, Input{GuessWord: "plumb", GuessMarks: wrong}, 0)
	e.Tick(s, Input{GuessWord: "crane", GuessMarks: right, GuessSolved: true}, 0)
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN", e.Terminal(s))
	}
	if len(s.WordGuess.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(s.WordGuess.Rows))
	}

	// Burn all five guesses.
	s, _ = e.Init(&models.Challenge{Kind: models.KindWordGuess})
	for i := 0; i < 5; i++ {
		e.Tick(s, Input{GuessWord: "boost", GuessMarks: wrong}, 0)
	}
	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS after 5 guesses", e.Terminal(s))
	}

	// A sixth guess is ignored.
	e.Tick(s, Input{GuessWord: "crane", GuessMarks: right, GuessSolved: true}, 0)
	if e.Terminal(s) != OutcomeLoss {
		t.Error("guess after terminal state should be ignored")
	}
}

func TestQuizTwoOfThreeWins(t *testing.T) {
	e := &QuizEngine{}
	ch := &models.Challenge{
		Kind: models.KindSequentialQuiz,
		SubQuestions: []models.SubQuestion{
			{Question: "q1"}, {Question: "q2"}, {Question: "q3"},
		},
	}
	s, err := e.Init(ch)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	answer := func(opt int, correct bool) {
		e.Tick(s, Input{QuizOption: &opt, QuizCorrect: correct}, 0)
		e.Tick(s, Input{}, quizFeedbackFrames+1)
	}

	answer(0, true)
	answer(1, false)
	if e.Terminal(s) != OutcomeNone {
		t.Fatal("terminal before last question")
	}
	answer(2, true)

	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN", e.Terminal(s))
	}
	if s.Quiz.Score != 2 {
		t.Errorf("score = %d, want 2", s.Quiz.Score)
	}
}

func TestQuizZeroCorrectLoses(t *testing.T) {
	e := &QuizEngine{}
	ch := &models.Challenge{
		Kind:         models.KindSequentialQuiz,
		SubQuestions: []models.SubQuestion{{Question: "q1"}, {Question: "q2"}},
	}
	s, _ := e.Init(ch)

	opt := 0
	for i := 0; i < 2; i++ {
		e.Tick(s, Input{QuizOption: &opt, QuizCorrect: false}, 0)
		e.Tick(s, Input{}, quizFeedbackFrames+1)
	}

	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS with zero correct", e.Terminal(s))
	}
}

func TestQuizAnswerIgnoredDuringFeedback(t *testing.T) {
	e := &QuizEngine{}
	ch := &models.Challenge{
		Kind:         models.KindSequentialQuiz,
		SubQuestions: []models.SubQuestion{{Question: "q1"}, {Question: "q2"}},
	}
	s, _ := e.Init(ch)

	opt := 0
	e.Tick(s, Input{QuizOption: &opt, QuizCorrect: true}, 0)
	// Still inside the feedback pause.
	e.Tick(s, Input{QuizOption: &opt, QuizCorrect: true}, 1)

	if s.Quiz.Score != 1 {
		t.Errorf("score = %d, want 1; answer during feedback must not count", s.Quiz.Score)
	}
}

func TestQuizForceFinish(t *testing.T) {
	e := &QuizEngine{}
	ch := &models.Challenge{
		Kind:         models.KindSequentialQuiz,
		SubQuestions: []models.SubQuestion{{Question: "q1"}, {Question: "q2"}, {Question: "q3"}},
	}
	s, _ := e.Init(ch)

	opt := 0
	e.Tick(s, Input{QuizOption: &opt, QuizCorrect: true}, 0)
	e.Tick(s, Input{}, quizFeedbackFrames+1)

	e.ForceFinish(s)
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN from partial score on force finish", e.Terminal(s))
	}
}

func TestGroupsSolveAndLives(t *testing.T) {
	e := &GroupsEngine{}
	ch := &models.Challenge{
		Kind: models.KindWordGroups,
		ConnectionItems: []models.ConnectionItem{
			{Word: "sand"}, {Word: "towel"}, {Word: "shell"}, {Word: "wave"},
			{Word: "tent"}, {Word: "fire"}, {Word: "trail"}, {Word: "map"},
		},
		GroupsLives: 2,
	}
	s, err := e.Init(ch)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	yes, no := true, false

	// Wrong selection costs a life.
	e.Tick(s, Input{GroupItems: []string{"sand", "tent", "fire", "map"}, GroupCorrect: &no}, 0)
	if s.Groups.Lives != 1 {
		t.Errorf("lives = %d, want 1", s.Groups.Lives)
	}

	e.Tick(s, Input{
		GroupItems:   []string{"sand", "towel", "shell", "wave"},
		GroupTitle:   "Beach things",
		GroupCorrect: &yes,
	}, 0)
	if len(s.Groups.Remaining) != 4 {
		t.Errorf("remaining = %d, want 4", len(s.Groups.Remaining))
	}
	if e.Terminal(s) != OutcomeNone {
		t.Fatal("terminal too early with a group left")
	}

	e.Tick(s, Input{
		GroupItems:   []string{"tent", "fire", "trail", "map"},
		GroupTitle:   "Camping things",
		GroupCorrect: &yes,
	}, 0)
	if e.Terminal(s) != OutcomeWin {
		t.Errorf("Terminal() = %v, want WIN with all groups solved", e.Terminal(s))
	}
}

func TestGroupsOutOfLives(t *testing.T) {
	e := &GroupsEngine{}
	ch := &models.Challenge{
		Kind: models.KindWordGroups,
		ConnectionItems: []models.ConnectionItem{
			{Word: "a"}, {Word: "b"}, {Word: "c"}, {Word: "d"},
		},
		GroupsLives: 1,
	}
	s, _ := e.Init(ch)

	no := false
	e.Tick(s, Input{GroupItems: []string{"a", "b", "c", "d"}, GroupCorrect: &no}, 0)

	if e.Terminal(s) != OutcomeLoss {
		t.Errorf("Terminal() = %v, want LOSS out of lives", e.Terminal(s))
	}
}

func TestCountdown(t *testing.T) {
	start := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	c := StartCountdown(60, start)
	if !c.Running() {
		t.Fatal("countdown should be running")
	}
	if c.Expired(start.Add(59 * time.Second)) {
		t.Error("expired too early")
	}
	if got := c.Remaining(start.Add(45 * time.Second)); got != 15*time.Second {
		t.Errorf("Remaining() = %v, want 15s", got)
	}
	if !c.Expired(start.Add(60 * time.Second)) {
		t.Error("should expire exactly at the limit")
	}
	if got := c.Remaining(start.Add(2 * time.Minute)); got != 0 {
		t.Errorf("Remaining() after expiry = %v, want 0", got)
	}

	// Untimed challenges never expire.
	z := StartCountdown(0, start)
	if z.Running() || z.Expired(start.Add(time.Hour)) {
		t.Error("zero-limit countdown must never expire")
	}
}
