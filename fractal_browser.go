package main

import (
	"flag"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/export/gltfexport"
	"github.com/mogaika/fractal_browser/export/snapshot"
	"github.com/mogaika/fractal_browser/scene"
	"github.com/mogaika/fractal_browser/status"
	"github.com/mogaika/fractal_browser/utils"
	"github.com/mogaika/fractal_browser/web"
)

func exportFile(sc *scene.Scene, tree *scene.Tree, path string, write func(f *os.File, t *scene.Tree) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot create %q", path)
	}
	defer f.Close()
	if err := sc.View(tree.ID, func(t *scene.Tree) error { return write(f, t) }); err != nil {
		return err
	}
	log.Printf("Written %q", path)
	return f.Close()
}

func headless(sc *scene.Scene, tree *scene.Tree, cfg config.Config, settle int, glbPath, pngPath string) error {
	steps := sc.Settle(cfg.TickInterval(), settle)
	if !sc.Done() {
		log.Printf("Tree %q did not finish growing in %d steps", tree.Name, steps)
	} else {
		log.Printf("Tree %q settled after %d steps", tree.Name, steps)
	}

	if glbPath != "" {
		if err := exportFile(sc, tree, glbPath, func(f *os.File, t *scene.Tree) error {
			doc := gltfexport.NewDocument()
			if _, err := gltfexport.ExportTree(doc, t.Name, t.Root); err != nil {
				return err
			}
			return gltfexport.ExportBinary(f, doc)
		}); err != nil {
			return err
		}
	}
	if pngPath != "" {
		if err := exportFile(sc, tree, pngPath, func(f *os.File, t *scene.Tree) error {
			return snapshot.EncodePNG(f, t.Root, snapshot.DefaultOptions())
		}); err != nil {
			return err
		}
	}
	return nil
}

func run(args []string) error {
	var addr, configPath, glbPath, pngPath string
	var depth, settle int
	var seed int64
	var verbose bool
	flags := flag.NewFlagSet("fractal_browser", flag.ContinueOnError)
	flags.StringVar(&addr, "i", ":8000", "Address of server")
	flags.StringVar(&configPath, "config", "", "Path to yaml config, defaults are used when empty")
	flags.IntVar(&depth, "depth", -1, "Max depth override, -1 keeps the config value")
	flags.Int64Var(&seed, "seed", 0, "Random seed override, 0 keeps the config value")
	flags.StringVar(&glbPath, "export", "", "Grow the tree headlessly and write it as .glb")
	flags.StringVar(&pngPath, "png", "", "Grow the tree headlessly and write a .png snapshot")
	flags.IntVar(&settle, "settle", 100000, "Max fixed steps for headless growth")
	flags.BoolVar(&verbose, "v", false, "Log every spawned child")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if depth >= 0 {
		cfg.MaxDepth = depth
	}
	if seed != 0 {
		cfg.Seed = seed
		utils.SeedNames(seed)
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc := scene.New()
	tree, err := sc.Spawn(cfg)
	if err != nil {
		return err
	}

	if glbPath != "" || pngPath != "" {
		return headless(sc, tree, cfg, settle, glbPath, pngPath)
	}

	scheduler := scene.NewScheduler(sc, cfg.TickInterval(), scene.RealClock())
	scheduler.Start()
	defer scheduler.Stop()

	hub := status.NewHub()
	defer hub.Close()

	return web.StartServer(addr, web.NewServer(sc, scheduler, hub, cfg))
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
