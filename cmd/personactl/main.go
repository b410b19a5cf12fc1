package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"personastudio/internal/adapter/repo"
	"personastudio/internal/domain"
	"personastudio/internal/infra"
)

// personactl is the operator escape hatch for personas whose training run
// wedged: it inspects a record and can force a status transition without
// going through the HTTP gating layer.
func main() {
	var (
		idFlag     string
		voiceFlag  string
		visualFlag string
		showFlag   bool
	)

	flag.StringVar(&idFlag, "id", "", "persona ID to inspect or update")
	flag.StringVar(&voiceFlag, "voice-status", "", "voice status to force (training or ready)")
	flag.StringVar(&visualFlag, "visual-status", "", "visual status to force (training or ready)")
	flag.BoolVar(&showFlag, "show", false, "print the persona record and exit")
	flag.Parse()

	_ = godotenv.Load()

	personaID := strings.TrimSpace(idFlag)
	if personaID == "" {
		exitWithError(errors.New("-id is required"))
	}

	var voice, visual domain.TrainingStatus
	var err error
	if voiceFlag != "" {
		if voice, err = domain.ParseTrainingStatus(voiceFlag); err != nil {
			exitWithError(err)
		}
	}
	if visualFlag != "" {
		if visual, err = domain.ParseTrainingStatus(visualFlag); err != nil {
			exitWithError(err)
		}
	}
	if !showFlag && voice == "" && visual == "" {
		exitWithError(errors.New("nothing to do: pass -show, -voice-status, or -visual-status"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "personactl").Logger()
	personas := repo.NewPersonaRepository(infra.NewSQLRunner(pool, logger))

	persona, err := personas.FindByID(ctx, personaID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load persona: %w", err))
	}

	if voice != "" || visual != "" {
		update := domain.PersonaUpsert{
			PersonaID:    persona.ID,
			UserID:       persona.UserID,
			VoiceStatus:  voice,
			VisualStatus: visual,
		}
		if err := personas.Upsert(ctx, update); err != nil {
			exitWithError(fmt.Errorf("failed to update persona: %w", err))
		}
		if persona, err = personas.FindByID(ctx, personaID); err != nil {
			exitWithError(fmt.Errorf("failed to reload persona: %w", err))
		}
	}

	fmt.Printf("persona %s owner=%s visual=%s voice=%s archive=%s updated=%s\n",
		persona.ID,
		persona.UserID,
		persona.VisualStatus,
		persona.VoiceStatus,
		persona.TrainingArchive,
		persona.UpdatedAt.UTC().Format(time.RFC3339),
	)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
