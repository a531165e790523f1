package oracle

import (
	"errors"
	"strings"

	"vacationtrail/internal/models"
)

// ErrNoSolution is returned when a challenge has no stored answer document.
// Verification fails closed: no solution means no win.
var ErrNoSolution = errors.New("no solution stored for challenge")

// SolutionSource loads the hidden answer document for a challenge day.
type SolutionSource interface {
	GetSolution(day int) (*models.Solution, error)
}

// Oracle answers the single question "is this submission correct?" against
// hidden answer data. Engines never see solutions; they receive only the
// oracle's verdict.
type Oracle struct {
	source SolutionSource
}

// New creates an oracle reading solutions from the given source.
func New(source SolutionSource) *Oracle {
	return &Oracle{source: source}
}

func (o *Oracle) solution(day int) (*models.Solution, error) {
	sol, err := o.source.GetSolution(day)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, ErrNoSolution
	}
	return sol, nil
}

// Normalize canonicalizes free-text answers for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// VerifyText checks a free-text answer against the keyword list. The answer
// is accepted when, after normalization, it contains any keyword, so "an
// echo" passes when the keyword is "echo".
func (o *Oracle) VerifyText(day int, answer string) (bool, error) {
	sol, err := o.solution(day)
	if err != nil {
		return false, err
	}
	if len(sol.AnswerKeywords) == 0 {
		return false, ErrNoSolution
	}
	got := Normalize(answer)
	for _, kw := range sol.AnswerKeywords {
		want := Normalize(kw)
		if want == "" {
			continue
		}
		if strings.Contains(got, want) {
			return true, nil
		}
	}
	return false, nil
}

// VerifyScramble checks an unscrambled word against the original word.
func (o *Oracle) VerifyScramble(day int, answer string) (bool, error) {
	sol, err := o.solution(day)
	if err != nil {
		return false, err
	}
	if sol.ScrambledWord == "" {
		return false, ErrNoSolution
	}
	return Normalize(answer) == Normalize(sol.ScrambledWord), nil
}

// VerifyQuizAnswer checks one chosen option of a sequential quiz. Question
// indexes are zero-based in sub-question order.
func (o *Oracle) VerifyQuizAnswer(day, questionIndex, optionIndex int) (bool, error) {
	sol, err := o.solution(day)
	if err != nil {
		return false, err
	}
	if questionIndex < 0 || questionIndex >= len(sol.SubQuestionAnswers) {
		return false, ErrNoSolution
	}
	return sol.SubQuestionAnswers[questionIndex] == optionIndex, nil
}

// VerifyGroup checks whether four selected items form one hidden group.
// On success it returns the group's title.
func (o *Oracle) VerifyGroup(day int, items []string) (string, bool, error) {
	sol, err := o.solution(day)
	if err != nil {
		return "", false, err
	}
	if len(sol.ConnectionGroups) == 0 {
		return "", false, ErrNoSolution
	}
	if len(items) == 0 {
		return "", false, nil
	}

	group := sol.GroupContaining(items[0])
	if group == nil {
		return "", false, nil
	}
	for _, item := range items[1:] {
		found := false
		for _, member := range group.Items {
			if strings.EqualFold(member, item) {
				found = true
				break
			}
		}
		if !found {
			return "", false, nil
		}
	}
	if len(items) != len(group.Items) {
		return "", false, nil
	}
	return group.Title, true, nil
}

// ScoreWordGuess scores a five-letter guess against the hidden target and
// reports whether the guess solved it.
func (o *Oracle) ScoreWordGuess(day int, guess string) ([]models.LetterMark, bool, error) {
	sol, err := o.solution(day)
	if err != nil {
		return nil, false, err
	}
	if sol.WordTarget == "" {
		return nil, false, ErrNoSolution
	}
	marks := ScoreGuess(sol.WordTarget, guess)
	solved := true
	for _, m := range marks {
		if m != models.MarkCorrect {
			solved = false
			break
		}
	}
	return marks, solved, nil
}

// ScoreGuess marks each guess letter against the target. Exact positions are
// consumed first, then remaining target letters satisfy out-of-place marks,
// so duplicate letters are never over-credited.
func ScoreGuess(target, guess string) []models.LetterMark {
	t := []rune(strings.ToLower(target))
	g := []rune(strings.ToLower(guess))

	marks := make([]models.LetterMark, len(g))
	used := make([]bool, len(t))

	// First pass: exact matches consume their target letter.
	for i := range g {
		if i < len(t) && g[i] == t[i] {
			marks[i] = models.MarkCorrect
			used[i] = true
		}
	}

	// Second pass: misplaced letters match any unconsumed target letter.
	for i := range g {
		if marks[i] == models.MarkCorrect {
			continue
		}
		marks[i] = models.MarkAbsent
		for j := range t {
			if !used[j] && g[i] == t[j] {
				marks[i] = models.MarkPresent
				used[j] = true
				break
			}
		}
	}

	return marks
}
