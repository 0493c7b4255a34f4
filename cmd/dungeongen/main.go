package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/config"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/entity"
	"github.com/lawnchairsociety/dungeongen/internal/export"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/store"
)

func main() {
	seedFlag := flag.Int64("seed", 0, "Layout seed (default: random based on current time)")
	width := flag.Int("width", 0, "Map width (default: from config)")
	height := flag.Int("height", 0, "Map height (default: from config)")
	configFile := flag.String("config", "config/dungeongen.yaml", "Path to config YAML file")
	outFile := flag.String("out", "", "Write the layout as YAML to this file")
	showASCII := flag.Bool("ascii", true, "Print the layout as ASCII")
	showLegend := flag.Bool("legend", true, "Show legend")
	dbFile := flag.String("db", "", "Store the layout in this sqlite database")
	loadFile := flag.String("load", "", "Render a saved layout YAML instead of generating one")
	algo := flag.String("algo", "", "Path algorithm override (astar or jps)")
	verbose := flag.Bool("v", false, "Log debug output to stderr")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fail("Error loading config", err)
	}
	if *width > 0 {
		cfg.Generator.Width = *width
	}
	if *height > 0 {
		cfg.Generator.Height = *height
	}
	if *algo != "" {
		cfg.Generator.PathAlgorithm = *algo
	}
	// The size cap only guards the server.
	cfg.Server.MaxWidth = max(cfg.Server.MaxWidth, cfg.Generator.Width)
	cfg.Server.MaxHeight = max(cfg.Server.MaxHeight, cfg.Generator.Height)
	if err := cfg.Validate(); err != nil {
		fail("Invalid config", err)
	}

	// Logs go to stderr so stdout carries only the map.
	logger.SetOutput(os.Stderr, logLevel(cfg.Logging.ConfigPath, *verbose, os.Stderr))

	ents, err := cfg.Entities.Factory()
	if err != nil {
		fail("Error loading entity tables", err)
	}

	var layout *dungeon.Layout
	if *loadFile != "" {
		layout, err = export.LoadFile(*loadFile)
		if err != nil {
			fail("Error loading layout", err)
		}
	} else {
		seed, random := seedFor(flag.CommandLine, *seedFlag, time.Now())
		if random {
			logger.Info("Layout seed selected", "seed", seed, "random", true)
		}
		layout, err = generate(cfg, ents, seed)
		if err != nil {
			fail("Error generating layout", err)
		}
	}

	if *outFile != "" {
		if err := export.SaveFile(layout, *outFile); err != nil {
			fail("Error writing layout file", err)
		}
		fmt.Fprintf(os.Stderr, "Layout written to %s\n", *outFile)
	}

	if *dbFile != "" {
		profile, err := cfg.Generator.Fingerprint(ents)
		if err != nil {
			fail("Error fingerprinting generator config", err)
		}
		st, err := store.Open(*dbFile)
		if err != nil {
			fail("Error opening layout store", err)
		}
		id, err := st.SaveLayout(profile, layout)
		st.Close()
		if err != nil {
			fail("Error storing layout", err)
		}
		fmt.Fprintf(os.Stderr, "Layout stored in %s (id %d)\n", *dbFile, id)
	}

	if *showASCII {
		var output strings.Builder
		output.WriteString(fmt.Sprintf("Layout (Seed: %d, Size: %dx%d, Rooms: %d, Attempts: %d)\n",
			layout.Seed, layout.Width, layout.Height, len(layout.Rooms), layout.Attempts))
		output.WriteString(strings.Repeat("=", min(layout.Width, 60)) + "\n")
		output.WriteString(export.RenderASCII(layout))
		if *showLegend {
			output.WriteString("\n" + export.Legend())
		}
		fmt.Print(output.String())
	}
}

// seedFor returns the seed to generate with and whether it was picked at
// random. Only an absent -seed flag means random, so seed 0 stays
// reproducible.
func seedFor(fs *flag.FlagSet, seed int64, now time.Time) (int64, bool) {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			set = true
		}
	})
	if set {
		return seed, false
	}
	return now.UnixNano(), true
}

// logLevel reads the logging config at path and picks the stderr level:
// DEBUG when verbose, otherwise the configured level with INFO raised to
// WARNING. A config that fails to load is reported to errOut and the
// defaults are used.
func logLevel(path string, verbose bool, errOut io.Writer) string {
	logCfg, err := logger.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(errOut, "Failed to load logging config, using defaults: %v\n", err)
	}
	switch {
	case verbose:
		return "DEBUG"
	case logCfg.Level == "INFO":
		return "WARNING"
	default:
		return logCfg.Level
	}
}

func generate(cfg *config.Config, ents *entity.Factory, seed int64) (*dungeon.Layout, error) {
	gen, err := cfg.Generator.NewGenerator(seed, cfg.Generator.Width, cfg.Generator.Height, ents)
	if err != nil {
		return nil, err
	}
	return gen.Generate()
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
