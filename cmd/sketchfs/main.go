package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sketchfs/sketchfs"
	"github.com/sketchfs/sketchfs/config"
	"github.com/sketchfs/sketchfs/internal/util"
	"github.com/sketchfs/sketchfs/server"
	"github.com/sketchfs/sketchfs/vfs"
)

func main() {
	var (
		configPath   string
		snapshotPath string
		entryPath    string
		serveAddr    string
		outPath      string
		seed         bool
		verbose      int
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&snapshotPath, "snapshot", "", "Path to a tree snapshot file to load")
	flag.StringVar(&snapshotPath, "s", "", "--snapshot (shorthand)")
	flag.StringVar(&entryPath, "entry", "", "Preview entry path (default from config)")
	flag.StringVar(&serveAddr, "serve", "", "Serve the session over HTTP at this address instead of building once")
	flag.StringVar(&outPath, "o", "", "Write the preview document here instead of stdout")
	flag.BoolVar(&seed, "seed", false, "Seed an empty session with the starter project")
	flag.IntVar(&verbose, "verbose", 3, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", 3, "--verbose (shorthand)")
	flag.Parse()

	verboseSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbose" || f.Name == "v" {
			verboseSet = true
		}
	})
	util.InitializeLogger(verbosityLevel(verbose))
	logger := util.GetLogger("main")

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		loaded, err := config.NewConfigFromFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config")
		}
		cfg = loaded
	}

	// An explicit verbosity flag wins; otherwise the config's log_level applies.
	util.InitializeLogger(effectiveLogLevel(verbose, verboseSet, cfg))

	sess := sketchfs.New(cfg)

	switch {
	case snapshotPath != "":
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			logger.Fatal().Err(err).Str("snapshot", snapshotPath).Msg("Failed to read snapshot file")
		}
		var snap vfs.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			logger.Fatal().Err(err).Str("snapshot", snapshotPath).Msg("Failed to parse snapshot file")
		}
		if err := sess.LoadSnapshot(snap); err != nil {
			logger.Fatal().Err(err).Str("snapshot", snapshotPath).Msg("Failed to restore snapshot")
		}
		logger.Info().Str("snapshot", snapshotPath).Msg("Snapshot loaded")
	case seed:
		if err := sess.SeedStarter(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed starter project")
		}
		logger.Debug().Msg("Starter project seeded")
	}

	if serveAddr != "" {
		srv := server.New(sess)
		if err := srv.ListenAndServe(serveAddr); err != nil {
			logger.Fatal().Err(err).Str("addr", serveAddr).Msg("Server exited")
		}
		return
	}

	build, err := sess.BuildPreview(entryPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Preview build failed")
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			logger.Fatal().Err(err).Str("out", outPath).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}
	if _, err := out.WriteString(build.Document); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write preview document")
	}
	logger.Info().
		Str("entry", build.EntryPath).
		Int("modules", len(build.ModulePaths)).
		Msg("Preview document written")
}

// verbosityLevel maps the 1-5 verbosity ladder onto log levels, clamping
// out-of-range values.
func verbosityLevel(verbose int) util.LogLevel {
	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// effectiveLogLevel picks the level the process should run at: the verbosity
// flag when the user passed one, the config's log_level otherwise.
func effectiveLogLevel(verbose int, verboseSet bool, cfg *config.Config) util.LogLevel {
	if verboseSet {
		return verbosityLevel(verbose)
	}
	return cfg.LogLvl
}
