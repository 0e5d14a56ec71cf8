// Package app собирает конфиг, хранилища, сервисы и HTTP сервер
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/api"
	"github.com/Freeeeeet/faculty_chat/internal/auth"
	"github.com/Freeeeeet/faculty_chat/internal/config"
	"github.com/Freeeeeet/faculty_chat/internal/controller"
	"github.com/Freeeeeet/faculty_chat/internal/notify"
	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Services собирает слой бизнес-логики
type Services struct {
	Directory *service.DirectoryService
	Invites   *service.InviteService
	Messages  *service.MessageService
}

// NewServices собирает сервисы поверх хранилищ
func NewServices(stores *Stores, notifier service.Notifier, logger *zap.Logger) *Services {
	invites := service.NewInviteService(stores.Teachers, stores.Invitations, notifier, logger)

	return &Services{
		Directory: service.NewDirectoryService(stores.Schools, stores.Teachers, logger),
		Invites:   invites,
		Messages:  service.NewMessageService(invites, stores.Messages, logger),
	}
}

// NewTelegramBot создаёт бота без запроса getMe, чтобы старт сервера не
// зависел от Telegram. Без токена возвращает nil.
func NewTelegramBot(cfg *config.Config) (*bot.Bot, error) {
	if cfg.TelegramToken == "" {
		return nil, nil
	}

	b, err := bot.New(cfg.TelegramToken, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// NewNotifier выбирает канал уведомлений: telegram, если бот есть
func NewNotifier(b *bot.Bot, logger *zap.Logger) service.Notifier {
	if b == nil {
		return notify.Nop{}
	}
	return notify.NewTelegram(b, logger)
}

// Run поднимает сервер и блокируется до отмены ctx
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	tgBot, err := NewTelegramBot(cfg)
	if err != nil {
		return err
	}

	services := NewServices(stores, NewNotifier(tgBot, logger), logger)

	if tgBot != nil {
		botController := controller.NewBotController(tgBot, services.Directory, services.Invites, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			// меню команд не критично, бот работает и без него
			logger.Warn("Telegram commands were not set", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	server := api.NewServer(&api.Options{
		Address:   cfg.HTTPAddr,
		Debug:     !cfg.IsProduction(),
		Directory: services.Directory,
		Invites:   services.Invites,
		Messages:  services.Messages,
		Tokens:    auth.NewTokens(cfg.JWTSecret),
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
