package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/maximobesteiro/montoncito/internal/cache"
	"github.com/maximobesteiro/montoncito/internal/config"
	"github.com/maximobesteiro/montoncito/internal/database"
	"github.com/maximobesteiro/montoncito/internal/game"
	"github.com/maximobesteiro/montoncito/internal/names"
	"github.com/maximobesteiro/montoncito/internal/rooms"
	"github.com/maximobesteiro/montoncito/internal/server"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := run(log, cfg); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(log *logrus.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var profiles database.ProfileStore = database.NewMemoryProfileStore()
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer p.Close()
		if err := database.Migrate(ctx, p); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pool = p
		profiles = database.NewPostgresProfileStore(p, func() string {
			return "Player-" + names.ShortTag()
		})
		log.Info("postgres connected")
	}

	var redisCache *cache.Cache
	if cfg.RedisURL != "" {
		c, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer c.Close()
		redisCache = c
		log.Info("redis connected")
	}

	registry := game.NewRegistry(log, redisCache)
	hub := server.NewHub(log, redisCache)

	var roomSvc *rooms.Service

	startGame := func(roomID string, players []string, gameCfg rooms.GameConfig) (string, error) {
		m, err := registry.Create(roomID, players, gameCfg)
		if err != nil {
			return "", err
		}
		hub.AttachMatch(m)
		// The finished match stays in the registry so late fetches still see
		// the final state.
		m.OnGameEnd = func(roomID, gameID, winnerID string, turns int) {
			roomSvc.Finish(roomID)
			if pool == nil {
				return
			}
			result := database.MatchResult{
				GameID:     gameID,
				RoomID:     roomID,
				WinnerID:   winnerID,
				Turns:      turns,
				FinishedAt: time.Now().UTC(),
			}
			go func() {
				saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				if err := database.SaveMatchResult(saveCtx, pool, result); err != nil {
					log.WithError(err).WithField("gameId", gameID).Warn("save match result")
				}
			}()
		}
		return m.Meta.ID, nil
	}

	roomSvc = rooms.NewService(rooms.Defaults{
		Visibility:     rooms.Visibility(cfg.RoomDefaultVisibility),
		MaxPlayers:     cfg.RoomDefaultMaxPlayers,
		HardMaxPlayers: cfg.RoomHardMaxPlayers,
		SlugLength:     cfg.RoomSlugLength,
	}, profiles, startGame, log)

	srv := server.New(log, cfg, roomSvc, registry, profiles, redisCache, hub)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
