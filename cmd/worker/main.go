package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"engrafo/internal/infra"
	"engrafo/internal/providers/mail"
	"engrafo/internal/sqlinline"
)

const (
	pollInterval = 5 * time.Second
	maxAttempts  = 5
)

// The worker drains the notifications outbox: one row per tick, sent
// through the mail provider, marked sent or retried up to maxAttempts.
// Running a single instance is assumed; there is no row locking.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("component", "worker").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sender, err := mail.NewResendClient(mail.ResendOptions{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.MailFrom,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure mail provider")
	}

	sql := infra.NewSQLRunner(dbpool, logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info().Msg("shutting down")
		cancel()
	}()

	logger.Info().Msg("notification worker started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			if err := processNext(ctx, sql, sender, logger); err != nil {
				logger.Error().Err(err).Msg("outbox pass failed")
			}
		}
	}
}

func processNext(ctx context.Context, sql infra.SQLExecutor, sender mail.Sender, logger infra.Logger) error {
	var (
		id, kind, recipient, subject, body string
		attempts                           int
	)
	row := sql.QueryRow(ctx, sqlinline.QNextPendingNotification)
	if err := row.Scan(&id, &kind, &recipient, &subject, &body, &attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	sendErr := sender.Send(ctx, mail.Message{To: recipient, Subject: subject, HTML: body})
	if sendErr != nil {
		logger.Warn().Err(sendErr).
			Str("notification_id", id).
			Str("kind", kind).
			Int("attempts", attempts+1).
			Msg("notification delivery failed")
		_, err := sql.Exec(ctx, sqlinline.QMarkNotificationFailed, id, maxAttempts, sendErr.Error())
		return err
	}

	logger.Info().Str("notification_id", id).Str("kind", kind).Msg("notification sent")
	_, err := sql.Exec(ctx, sqlinline.QMarkNotificationSent, id)
	return err
}
