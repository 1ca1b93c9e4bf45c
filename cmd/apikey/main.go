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

	"bonchef/internal/infra"
	"bonchef/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag      string
		providerFlag string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to the environment)")
	flag.StringVar(&providerFlag, "provider", credentials.ProviderGemini, "provider to configure (gemini or videoproc)")
	flag.Parse()

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	envKey := map[string]string{
		credentials.ProviderGemini:         "GEMINI_API_KEY",
		credentials.ProviderVideoProcessor: "VIDEO_PROCESSOR_API_KEY",
	}
	envName, ok := envKey[provider]
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(envName))
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s key is required via -key or %s\n", provider, envName)
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
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", "apikey").With().Str("provider", provider).Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))

	if err := store.SetKey(ctx, provider, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s key: %v\n", provider, err)
		os.Exit(1)
	}
	fmt.Printf("%s key stored\n", provider)
}
