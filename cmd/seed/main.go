package main

import (
	"flag"
	"log"

	"vacationtrail/internal/config"
	"vacationtrail/internal/database"
	"vacationtrail/internal/ledger"
	"vacationtrail/internal/models"
	"vacationtrail/internal/repository"
	"vacationtrail/internal/service"
)

func main() {
	force := flag.Bool("force", false, "Overwrite challenges that already exist")
	flag.Parse()

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	playerRepo := repository.NewPlayerRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	attempts := ledger.New(playerRepo)
	admin := service.NewAdminService(db, challengeRepo, boardRepo, settingsRepo, playerRepo, attempts)

	if err := admin.SaveBoardLayout(models.DefaultBoardLayout()); err != nil {
		log.Fatalf("Failed to seed board layout: %v", err)
	}
	log.Println("Seeded default board layout")

	seeded, skipped := 0, 0
	for _, draft := range sampleChallenges() {
		if !*force {
			existing, err := challengeRepo.GetByDay(draft.Challenge.Day)
			if err != nil {
				log.Fatalf("Failed to check day %d: %v", draft.Challenge.Day, err)
			}
			if existing != nil {
				skipped++
				continue
			}
		}
		if _, err := admin.SaveChallenge(&draft); err != nil {
			log.Fatalf("Failed to seed day %d: %v", draft.Challenge.Day, err)
		}
		seeded++
	}

	log.Printf("Seeding complete: %d challenges written, %d already present", seeded, skipped)
}

// sampleChallenges returns one starter challenge per mini-game kind, plus the
// bonus riddle reachable from the board's bonus tiles.
func sampleChallenges() []service.ChallengeDraft {
	return []service.ChallengeDraft{
		{
			Challenge: models.Challenge{
				Day: 1, Kind: models.KindTextAnswer, Points: 2,
				Question: "What is the name of the street where we always rent the beach house?",
			},
			Solution: models.Solution{AnswerKeywords: []string{"rua das gaivotas", "gaivotas"}},
		},
		{
			Challenge: models.Challenge{
				Day: 2, Kind: models.KindScramble, Points: 2,
				Question: "Unscramble the thing we always forget to pack.",
			},
			Solution: models.Solution{ScrambledWord: "protetor"},
		},
		{
			Challenge: models.Challenge{
				Day: 3, Kind: models.KindWordGuess, Points: 3,
				Question: "Guess the five-letter word that describes this trip.",
			},
			Solution: models.Solution{WordTarget: "praia"},
		},
		{
			Challenge: models.Challenge{
				Day: 4, Kind: models.KindSequentialQuiz,
				Question: "How well do you know the family?",
				SubQuestions: []models.SubQuestion{
					{Question: "Who always falls asleep in the car first?", Options: []string{"Dad", "Grandma", "The dog"}, CorrectIndex: 1},
					{Question: "What do we eat on the first night?", Options: []string{"Pizza", "Barbecue", "Pasta"}, CorrectIndex: 1},
					{Question: "Who owns the loudest flip-flops?", Options: []string{"Mom", "Uncle Beto", "Nobody admits it"}, CorrectIndex: 2},
				},
			},
		},
		{
			Challenge: models.Challenge{
				Day: 5, Kind: models.KindWordGroups, Points: 3, GroupsLives: 4,
				Question: "Sort these sixteen words into their four groups.",
			},
			Solution: models.Solution{ConnectionGroups: []models.ConnectionGroup{
				{Title: "Beach gear", Items: []string{"Umbrella", "Cooler", "Towel", "Chair"}},
				{Title: "Card games", Items: []string{"Truco", "Canastra", "Buraco", "Sueca"}},
				{Title: "Ice cream flavors", Items: []string{"Coconut", "Mango", "Pistachio", "Lime"}},
				{Title: "Things Dad loses", Items: []string{"Keys", "Glasses", "Wallet", "Patience"}},
			}},
		},
		{
			Challenge: models.Challenge{
				Day: 6, Kind: models.KindRunner, Points: 2,
				Question: "Fly the seagull past ten umbrellas.",
				RunnerThreshold: 10, RunnerLives: 2,
			},
		},
		{
			Challenge: models.Challenge{
				Day: 7, Kind: models.KindPaddleBall, Points: 2,
				Question: "Keep the beach ball in play.",
				BallThreshold: 10, BallSpeed: models.SpeedMedium, BallLives: 3,
			},
		},
		{
			Challenge: models.Challenge{
				Day: 8, Kind: models.KindMemory, Points: 2,
				Question: "Match the vacation photos before time runs out.",
				MemoryImages: []string{
					"/img/memory/sunset.png", "/img/memory/crab.png",
					"/img/memory/kiosk.png", "/img/memory/surfboard.png",
					"/img/memory/coconut.png", "/img/memory/hammock.png",
				},
			},
		},
		{
			Challenge: models.Challenge{
				Day: 9, Kind: models.KindCategoryWord,
				Question: "Fill every category before the clock runs out.",
				Letter:   "C",
			},
		},
		{
			Challenge: models.Challenge{
				Day: 10, Kind: models.KindPlatformer, Points: 3,
				Question: "Reach the flag at the end of the boardwalk.",
				PlatformerLives: 3,
			},
		},
		{
			Challenge: models.Challenge{
				Day: 11, Kind: models.KindPhotoUpload, Points: 2,
				Question: "Upload the best photo of today's sunset.",
			},
		},
		{
			Challenge: models.Challenge{
				Day: 12, Kind: models.KindPhotoScavenger, Points: 3,
				Question:      "Find it and photograph it before the timer ends.",
				ScavengerItem: "something older than Grandpa",
			},
		},
		{
			Challenge: models.Challenge{
				Day: models.BonusDay, Kind: models.KindTextAnswer, Points: 2,
				Question: "Bonus riddle: I follow you all day at the beach but drown at noon. What am I?",
			},
			Solution: models.Solution{AnswerKeywords: []string{"shadow", "sombra"}},
		},
	}
}
