package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"helium-admin/internal/domain"
	"helium-admin/internal/infra"
	"helium-admin/internal/sqlinline"
)

func main() {
	var (
		countFlag   int
		maxUsesFlag int
		expiresFlag int
	)

	flag.IntVar(&countFlag, "n", 20, "number of invite codes to generate")
	flag.IntVar(&maxUsesFlag, "max-uses", 1, "redemptions allowed per code")
	flag.IntVar(&expiresFlag, "expires", 30, "days until the codes expire (set <=0 for no expiry)")
	flag.Parse()

	if countFlag <= 0 {
		exitWithError(errors.New("-n must be positive"))
	}
	if maxUsesFlag <= 0 {
		exitWithError(errors.New("-max-uses must be positive"))
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

	logger := infra.NewLogger("cli").With().Str("cmd", "invitegen").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	var expiresAt *time.Time
	if expiresFlag > 0 {
		t := time.Now().UTC().AddDate(0, 0, expiresFlag)
		expiresAt = &t
	}

	for i := 0; i < countFlag; i++ {
		code, err := insertCode(runner, maxUsesFlag, expiresAt)
		if err != nil {
			exitWithError(fmt.Errorf("failed to generate code %d of %d: %w", i+1, countFlag, err))
		}
		fmt.Println(code)
	}
}

// insertCode draws codes until one clears the unique constraint on
// invite_codes.code, matching how the API endpoint handles collisions.
func insertCode(runner *infra.SQLRunner, maxUses int, expiresAt *time.Time) (string, error) {
	const attempts = 5
	for attempt := 0; attempt < attempts; attempt++ {
		code, err := domain.NewInviteCode()
		if err != nil {
			return "", err
		}
		insertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var id string
		err = runner.QueryRow(insertCtx, sqlinline.QInsertInviteCode, code, maxUses, expiresAt).Scan(&id)
		cancel()
		if err == nil {
			return code, nil
		}
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
			return "", err
		}
	}
	return "", errors.New("exhausted unique code attempts")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
