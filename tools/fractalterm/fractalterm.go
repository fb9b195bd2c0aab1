package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/scene"
	"github.com/mogaika/fractal_browser/termview"
)

func main() {
	var configPath, logPath string
	var depth, fps int
	var seed int64
	flag.StringVar(&configPath, "config", "", "Path to yaml config, defaults are used when empty")
	flag.IntVar(&depth, "depth", -1, "Max depth override, -1 keeps the config value")
	flag.Int64Var(&seed, "seed", 0, "Random seed override, 0 keeps the config value")
	flag.IntVar(&fps, "fps", 20, "Redraws per second")
	flag.StringVar(&logPath, "log", "", "Write logs to this file instead of dropping them")
	flag.Parse()

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if depth >= 0 {
		cfg.MaxDepth = depth
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if fps <= 0 {
		log.Fatalf("fps must be positive, got %d", fps)
	}

	sc := scene.New()
	if _, err := sc.Spawn(cfg); err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	// the terminal belongs to the viewer from here on
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			screen.Fini()
			log.Fatal(err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(ioutil.Discard)
	}

	scheduler := scene.NewScheduler(sc, cfg.TickInterval(), scene.RealClock())
	scheduler.Start()
	defer scheduler.Stop()

	if err := termview.New(screen, sc, scheduler, cfg).Run(time.Second / time.Duration(fps)); err != nil {
		log.Print(err)
	}
}
