// Package server initializes and runs the membervault server: it opens the
// database, applies migrations, provisions the PII encryption key, and starts
// the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"crypto/aes"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yuwenwww/membervault/internal/cryptox"
	"github.com/yuwenwww/membervault/internal/logging"
	"github.com/yuwenwww/membervault/internal/server/config"
	"github.com/yuwenwww/membervault/internal/server/httpapi"
	"github.com/yuwenwww/membervault/internal/server/repositories/repomanager"
	"github.com/yuwenwww/membervault/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	keyService    *services.KeyService
	memberService *services.MemberService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	ks := services.NewKeyService(db, rm)
	cipher := cryptox.NewCipher(aes.NewCipher)
	ms, err := services.NewMemberService(db, rm, ks, cipher, c.BcryptCost, c.PIIKeySizeBits)
	if err != nil {
		return nil, fmt.Errorf("member service init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, keyService: ks, memberService: ms}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(
		app.config.HTTPAddr,
		app.logger,
		app.memberService,
		app.config.SecretKey,
		app.config.AccessTokenValidityDuration,
		app.config.PIIKeyLabel,
	)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// the key record exists before the first registration needs it
	if _, err := app.keyService.EnsureKey(ctx, app.config.PIIKeyLabel, app.config.PIIKeySizeBits); err != nil {
		app.logger.Error(ctx, "key provisioning failed", "error", err)
		cancelFunc()
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
