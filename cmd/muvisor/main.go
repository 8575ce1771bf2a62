package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"golang.org/x/sync/errgroup"

	sloggger "github.com/lrivero/muvisor/cmd/muvisor/log"
	"github.com/lrivero/muvisor/internal/bot"
	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/event"
	"github.com/lrivero/muvisor/internal/game/winproc"
	"github.com/lrivero/muvisor/internal/ocr"
	"github.com/lrivero/muvisor/internal/remote/discord"
	"github.com/lrivero/muvisor/internal/remote/telegram"
)

// wrapWithRecover wraps a function with panic recovery logic
func wrapWithRecover(logger *slog.Logger, f func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				stackTrace := debug.Stack()
				errMsg := fmt.Sprintf("panic recovered: %v\nStacktrace: %s", r, stackTrace)
				logger.Error(errMsg)
				sloggger.FlushLog()
			}
		}()
		return f()
	}
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Error loading configuration: %s", err.Error())
	}

	logger, err := sloggger.NewLogger(config.Muvisor.Debug.Log, config.Muvisor.LogSaveDirectory, "")
	if err != nil {
		log.Fatalf("Error starting logger: %s", err.Error())
	}
	defer sloggger.FlushAndClose()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("fatal error, muvisor will close: %v\nStacktrace: %s", r, debug.Stack()))
			sloggger.FlushAndClose()
		}
	}()

	if config.Muvisor.FirstRun {
		name := config.Muvisor.DefaultServer
		if name == "" {
			name = "myserver"
		}
		if err := config.CreateFromTemplate(name); err != nil {
			logger.Error("Could not create server config from template", slog.Any("error", err))
		} else {
			logger.Info("Created server config from template, edit it and restart",
				slog.String("path", "config/"+name+"/config.yaml"))
		}
		return
	}

	servers := config.GetServers()
	if len(servers) == 0 {
		logger.Error("No server configurations found under config/")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	winproc.SetProcessDpiAware.Call() // Read the real pixel layout regardless of display scaling

	eventListener := event.NewListener(logger)

	if config.Muvisor.Discord.Enabled {
		discordBot, err := discord.NewBot(
			config.Muvisor.Discord.Token,
			config.Muvisor.Discord.ChannelID,
			config.Muvisor.Discord.UseWebhook,
			config.Muvisor.Discord.WebhookURL,
		)
		if err != nil {
			logger.Error("Discord could not been initialized", slog.Any("error", err))
			return
		}
		eventListener.Register(discordBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return discordBot.Start(ctx)
		}))
	}

	if config.Muvisor.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(config.Muvisor.Telegram.Token, config.Muvisor.Telegram.ChatID, logger)
		if err != nil {
			logger.Error("Telegram could not been initialized", slog.Any("error", err))
			return
		}
		defer telegramBot.Close()
		eventListener.Register(telegramBot.Handle)
		g.Go(wrapWithRecover(logger, func() error {
			return telegramBot.Start(ctx)
		}))
	}

	g.Go(wrapWithRecover(logger, func() error {
		return eventListener.Listen(ctx)
	}))

	for name, srv := range servers {
		// One engine per supervisor: the tesseract client is not safe for
		// concurrent use.
		engine := ocr.NewTesseractEngine(config.Muvisor.TesseractPath)
		defer engine.Close()

		supervisor, err := bot.New(name, srv, engine, logger.With(slog.String("supervisor", name)))
		if err != nil {
			logger.Error("Could not build supervisor", slog.String("server", name), slog.Any("error", err))
			continue
		}
		g.Go(wrapWithRecover(logger, func() error {
			defer cancel()
			return supervisor.Run(ctx)
		}))
	}

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case s := <-sig:
			logger.Info("Shutting down", slog.String("signal", s.String()))
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Error running muvisor", slog.Any("error", err))
	}

	sloggger.FlushAndClose()
}
