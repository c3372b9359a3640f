package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	_ "github.com/avezhov/shop-api/docs"
	"github.com/avezhov/shop-api/internal/address"
	"github.com/avezhov/shop-api/internal/catalog"
	"github.com/avezhov/shop-api/internal/config"
	"github.com/avezhov/shop-api/internal/notify"
	"github.com/avezhov/shop-api/internal/order"
	"github.com/avezhov/shop-api/internal/store"
	"github.com/avezhov/shop-api/internal/user"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "shop-api").Logger()

	if err := runMigrations(cfg); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Connect(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer st.Close()

	tokens, err := user.NewTokenMaker(cfg.TokenKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad token key")
	}

	// with no SMTP relay configured every notification is dropped
	var dispatcher notify.Dispatcher = notify.Noop{}
	var activation user.ActivationMailer = notify.Noop{}
	if cfg.SMTPHost != "" {
		m := notify.NewMailer(notify.SMTPConfig{
			Host:            cfg.SMTPHost,
			Port:            cfg.SMTPPort,
			User:            cfg.SMTPUser,
			Password:        cfg.SMTPPassword,
			From:            cfg.FromEmail,
			BackOfficeEmail: cfg.BackOfficeEmail,
		}, logger)
		dispatcher, activation = m, m
	} else {
		logger.Warn().Msg("SMTP_HOST is empty, outgoing email disabled")
	}

	userRepo := user.NewPGRepo(st.Pool)
	itemRepo := catalog.NewPGRepo(st.Pool)
	addrRepo := address.NewPGRepo(st.Pool)
	orderRepo := order.NewPGRepo(st)

	userSvc := user.NewService(userRepo, tokens, activation, cfg.PublicBaseURL, logger)
	orderSvc := order.NewService(orderRepo, addrRepo, userRepo, dispatcher, logger)

	r := newRouter(deps{
		users:     userSvc,
		userRepo:  userRepo,
		tokens:    tokens,
		items:     itemRepo,
		addresses: addrRepo,
		orders:    orderSvc,
		logger:    logger,
	})

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("shop-api listening")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func runMigrations(cfg config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationDir, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
