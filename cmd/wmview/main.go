// Command wmview is the desktop viewer for OWT wafer maps: pick a mask,
// pick a map, and see the die layout with its radial histograms.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2/app"

	"github.com/banshee-data/wafermap/internal/config"
	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/monitoring"
	"github.com/banshee-data/wafermap/internal/version"
	"github.com/banshee-data/wafermap/internal/viewmodel"
)

var (
	configPath  = flag.String("config", "", "settings file (.json, .yaml or .yml)")
	maskDir     = flag.String("masks", "", "mask directory (overrides the settings file)")
	verbose     = flag.Bool("v", false, "log to stderr")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("wmview"))
		return
	}

	var logf monitoring.Logf
	if *verbose {
		logf = monitoring.New(os.Stderr, "wmview: ")
	}

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("wmview: %v", err)
		}
	}

	vm, err := viewmodel.NewFromConfig(cfg, fsutil.OSFileSystem{}, *maskDir, logf)
	if err != nil {
		log.Fatalf("wmview: %v", err)
	}

	a := app.NewWithID("report.banshee.wafermap")
	v := newViewer(a, vm, logf)
	v.loadMasks()
	v.window.ShowAndRun()
}
