package service

import (
	"math/rand"
	"testing"

	"vacationtrail/internal/models"
)

func TestShuffledItems(t *testing.T) {
	groups := []models.ConnectionGroup{
		{Title: "Beaches", Items: []string{"Copacabana", "Ipanema", "Leblon", "Barra"}},
		{Title: "Fruits", Items: []string{"Manga", "Caju", "Acerola", "Graviola"}},
	}

	items := shuffledItems(groups, rand.New(rand.NewSource(42)))

	if len(items) != 8 {
		t.Fatalf("Expected 8 items, got %d", len(items))
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.Word] = true
	}
	for _, g := range groups {
		for _, word := range g.Items {
			if !seen[word] {
				t.Errorf("Item %q missing from shuffled list", word)
			}
		}
	}
}

func TestSaveChallengeRequiresSolution(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)

	tests := []struct {
		name  string
		draft ChallengeDraft
	}{
		{
			name: "text without keywords",
			draft: ChallengeDraft{
				Challenge: models.Challenge{Day: 1, Kind: models.KindTextAnswer, Question: "q"},
			},
		},
		{
			name: "scramble without word",
			draft: ChallengeDraft{
				Challenge: models.Challenge{Day: 2, Kind: models.KindScramble, Question: "q"},
			},
		},
		{
			name: "connections without groups",
			draft: ChallengeDraft{
				Challenge: models.Challenge{Day: 3, Kind: models.KindWordGroups, Question: "q"},
			},
		},
		{
			name: "quiz without questions",
			draft: ChallengeDraft{
				Challenge: models.Challenge{Day: 4, Kind: models.KindSequentialQuiz, Question: "q"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.admin.SaveChallenge(&tt.draft); err != ErrMissingSolution {
				t.Errorf("Expected ErrMissingSolution, got %v", err)
			}
		})
	}
}

func TestSaveChallengeStripsQuizAnswers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)

	ch, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{
			Day:      5,
			Kind:     models.KindSequentialQuiz,
			Question: "Trip trivia",
			SubQuestions: []models.SubQuestion{
				{Question: "Which city came first?", Options: []string{"Rio", "Salvador", "Recife"}, CorrectIndex: 1},
				{Question: "How many flights?", Options: []string{"2", "3", "4"}, CorrectIndex: 2},
			},
		},
	})
	if err != nil {
		t.Fatalf("Failed to save quiz: %v", err)
	}

	for i, q := range ch.SubQuestions {
		if q.CorrectIndex != 0 {
			t.Errorf("Public sub-question %d leaks CorrectIndex=%d", i, q.CorrectIndex)
		}
	}

	draft, err := env.admin.GetDraft(5)
	if err != nil {
		t.Fatalf("Failed to load draft: %v", err)
	}
	want := []int{1, 2}
	if len(draft.Solution.SubQuestionAnswers) != len(want) {
		t.Fatalf("Expected %d hidden answers, got %d", len(want), len(draft.Solution.SubQuestionAnswers))
	}
	for i, idx := range want {
		if draft.Solution.SubQuestionAnswers[i] != idx {
			t.Errorf("Hidden answer %d = %d, want %d", i, draft.Solution.SubQuestionAnswers[i], idx)
		}
	}
}

func TestSaveChallengeScrambleDisplay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newTestEnv(t)

	ch, err := env.admin.SaveChallenge(&ChallengeDraft{
		Challenge: models.Challenge{Day: 6, Kind: models.KindScramble, Question: "Unscramble it"},
		Solution:  models.Solution{ScrambledWord: "farofa"},
	})
	if err != nil {
		t.Fatalf("Failed to save scramble: %v", err)
	}
	if len(ch.ScrambledDisplay) != len("farofa") {
		t.Errorf("Scrambled display %q should be a permutation of the word", ch.ScrambledDisplay)
	}
}
