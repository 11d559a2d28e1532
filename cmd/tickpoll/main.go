package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/l1jgo/tickpoll/internal/config"
	"github.com/l1jgo/tickpoll/internal/core/event"
	"github.com/l1jgo/tickpoll/internal/data"
	"github.com/l1jgo/tickpoll/internal/host"
	"github.com/l1jgo/tickpoll/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              tickpoll  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        frame-driven predicate polling     \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mhost:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main host logic ────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/tickpoll.toml"
	if p := os.Getenv("TICKPOLL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Host.Name)

	// 3. Frame loop: world, scheduler, behaviours, systems
	loop := host.New(cfg.Host, log)
	event.Subscribe(loop.Bus, func(ev event.RoutineFaulted) {
		log.Error("routine stopped after fault",
			zap.Uint64("id", ev.RoutineID),
			zap.String("name", ev.Name),
			zap.Error(ev.Err),
		)
	})

	// 4. Scripts and triggers
	printSection("scripts")
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, loop.Behaviours, loop.Wait, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()
	printOK("lua scripts loaded")

	if cfg.Scripting.Triggers != "" {
		triggers, err := data.LoadTriggerTable(cfg.Scripting.Triggers)
		if err != nil {
			return fmt.Errorf("load triggers: %w", err)
		}
		for _, tr := range triggers.All() {
			if _, err := engine.Bind(tr); err != nil {
				return fmt.Errorf("bind triggers: %w", err)
			}
		}
		printStat("triggers", triggers.Count())
	}
	printStat("behaviours", loop.Behaviours.Count())
	printStat("routines", loop.Scheduler.Len())
	fmt.Println()

	// 5. Run until signalled
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("ready")
	printReady(fmt.Sprintf("frame loop started (frame: %s, fixed step: %s)", cfg.Host.FrameRate, cfg.Host.FixedStep))
	fmt.Println()

	if err := loop.Run(ctx, cfg.Host.FrameRate); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("host stopped", zap.Uint64("frames", loop.Frames()))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
