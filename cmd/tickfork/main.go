package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tickfork/audio"
	"github.com/lixenwraith/tickfork/config"
	"github.com/lixenwraith/tickfork/core"
	"github.com/lixenwraith/tickfork/engine"
	"github.com/lixenwraith/tickfork/network"
	"github.com/lixenwraith/tickfork/render"
	"github.com/lixenwraith/tickfork/status"
)

var (
	configFlag = flag.String("config", "", "Path to YAML config, empty uses built-in defaults")
	debugFlag  = flag.Bool("debug", false, "Write debug logs to logs/tickfork.log")
	addrFlag   = flag.String("addr", "", "Serve snapshots and metrics on this address, overrides config")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *addrFlag != "" {
		cfg.Network.Enabled = true
		cfg.Network.Addr = *addrFlag
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	// Restore the terminal before any crash output, simulation episodes run on core.Go
	core.SetCrashHandler(func(r any) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mTICKFORK CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
		os.Exit(1)
	})
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if err := run(cfg, screen); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	screen.Fini()
}

func run(cfg *config.Config, screen tcell.Screen) error {
	metrics := status.NewRegistry()
	sc, err := newScene(cfg, metrics, uint64(time.Now().UnixNano()))
	if err != nil {
		return err
	}
	defer sc.shutdown()

	renderer := render.NewTerminalRenderer(screen, render.DefaultViewport(), metrics)
	sc.app.AddSystem(engine.StageRender, renderer.System())

	cue := audio.NewCue(audio.Config{
		Enabled:    cfg.Audio.Enabled,
		Volume:     cfg.Audio.Volume,
		SampleRate: cfg.Audio.SampleRate,
	})
	if err := cue.Initialize(); err != nil {
		slog.Warn("audio initialization failed, continuing without audio", "error", err)
	}
	defer cue.Close()
	sc.app.AddSystem(engine.StagePostUpdate, cue.System())

	if cfg.Network.Enabled {
		netCfg := network.DefaultConfig()
		netCfg.Address = cfg.Network.Addr
		netCfg.SnapshotEvery = cfg.Network.SnapshotEvery
		service := network.NewService(netCfg, metrics)
		if err := service.Start(); err != nil {
			return fmt.Errorf("start network service: %w", err)
		}
		defer service.Stop(context.Background())
		sc.app.AddSystem(engine.StageRender, service.System())
		slog.Info("network service listening", "addr", service.Addr())
	}

	clock := engine.NewPausableClock(nil)
	frameTicker := time.NewTicker(time.Second / time.Duration(cfg.Frame.FPS))
	defer frameTicker.Stop()

	eventChan := make(chan tcell.Event, 256)
	quit := make(chan struct{})
	defer close(quit)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	})

	in := &input{scene: sc, clock: clock, renderer: renderer}
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !in.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				renderer.HandleResize()
			}

		case <-frameTicker.C:
			sc.app.Frame(clock.Delta())
		}
	}
}
