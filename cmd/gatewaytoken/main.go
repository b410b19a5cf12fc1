package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"personastudio/internal/infra"
	"personastudio/internal/infra/credentials"
)

// gatewaytoken stores or rotates the prediction-gateway API token in the
// integration-token table. The API falls back to this value when the
// REPLICATE_API_TOKEN environment variable is not set.
func main() {
	var tokenFlag string
	flag.StringVar(&tokenFlag, "token", "", "gateway API token (falls back to REPLICATE_API_TOKEN)")
	flag.Parse()

	_ = godotenv.Load()

	token := strings.TrimSpace(tokenFlag)
	if token == "" {
		token = strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN"))
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "gateway token is required via -token or REPLICATE_API_TOKEN")
		os.Exit(1)
	}
	if !strings.HasPrefix(token, "r8_") {
		fmt.Fprintln(os.Stderr, "gateway token must start with r8_")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "gatewaytoken").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if err := store.SetReplicateAPIToken(ctx, token); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store gateway token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("gateway token stored")
}
