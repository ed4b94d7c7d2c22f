// Command wmreport lists OWT masks and writes wafer-map reports.
//
//	wmreport [flags]             list masks
//	wmreport [flags] MASK        list the maps and devices of MASK
//	wmreport [flags] MASK MAP    write plots, HTML and optional workbook/database rows
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/wafermap/internal/config"
	"github.com/banshee-data/wafermap/internal/export"
	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/monitoring"
	"github.com/banshee-data/wafermap/internal/render"
	"github.com/banshee-data/wafermap/internal/version"
	"github.com/banshee-data/wafermap/internal/viewmodel"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("wmreport: %v", err)
	}
}

type options struct {
	configPath  string
	maskDir     string
	outDir      string
	html        bool
	xlsx        bool
	sqlitePath  string
	noCrosshair bool
	noLegend    bool
	verbose     bool
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("wmreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "settings file (.json, .yaml or .yml)")
	fs.StringVar(&o.maskDir, "masks", "", "mask directory (overrides the settings file)")
	fs.StringVar(&o.outDir, "out", "", "report directory (overrides the settings file)")
	fs.BoolVar(&o.html, "html", true, "write an interactive HTML page")
	fs.BoolVar(&o.xlsx, "xlsx", false, "write an .xlsx workbook")
	fs.StringVar(&o.sqlitePath, "sqlite", "", "record the report in this SQLite database")
	fs.BoolVar(&o.noCrosshair, "no-crosshairs", false, "omit crosshairs from the wafer plot")
	fs.BoolVar(&o.noLegend, "no-legend", false, "omit the wafer plot legend")
	fs.BoolVar(&o.verbose, "v", false, "log progress to stderr")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: wmreport [flags] [MASK [MAP]]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 2 {
		fs.Usage()
		return nil, nil, fmt.Errorf("too many arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer, fs fsutil.FileSystem) error {
	o, rest, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String("wmreport"))
		return nil
	}

	var logf monitoring.Logf
	if o.verbose {
		logf = monitoring.New(stderr, "wmreport: ")
	}

	cfg := config.Empty()
	if o.configPath != "" {
		cfg, err = config.LoadFS(fs, o.configPath)
		if err != nil {
			return err
		}
	}

	vm, err := viewmodel.NewFromConfig(cfg, fs, o.maskDir, logf)
	if err != nil {
		return err
	}

	switch len(rest) {
	case 0:
		return listMasks(stdout, vm)
	case 1:
		return describeMask(stdout, vm, rest[0])
	}

	outDir := o.outDir
	if outDir == "" {
		outDir = cfg.GetOutputDir()
	}
	return writeReport(stdout, fs, vm, rest[0], rest[1], outDir, o, logf)
}

func listMasks(w io.Writer, vm *viewmodel.ViewModel) error {
	names, err := vm.MaskNames()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func describeMask(w io.Writer, vm *viewmodel.ViewModel, name string) error {
	s, err := vm.Open(name)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Mask\t%s\n", s.Name)
	fmt.Fprintf(tw, "File\t%s\n", s.Path)
	fmt.Fprintf(tw, "Wafer\t%d mm (section [%s])\n", s.Size.Diameter, s.Size.Section)
	fmt.Fprintf(tw, "Die\t%g x %g mm\n", s.Info.DieX, s.Info.DieY)
	fmt.Fprintf(tw, "Center\trow %d, col %d (%s)\n", s.Geometry.Center.Y, s.Geometry.Center.X, s.Info.CenterKey)
	fmt.Fprintf(tw, "Grid\t%d rows x %d cols\n", s.Layout.Rows, s.Layout.Cols)
	fmt.Fprintf(tw, "Flat\tcode %d, %.1f mm edge / %.1f mm flat exclusion\n", s.Info.Flat, s.Geometry.EdgeExclusion, s.Geometry.FlatExclusion)
	fmt.Fprintf(tw, "Maps\t%s\n", strings.Join(s.Maps, ", "))
	fmt.Fprintf(tw, "Devices\t%s\n", strings.Join(s.Devices, ", "))
	return tw.Flush()
}

func writeReport(w io.Writer, fs fsutil.FileSystem, vm *viewmodel.ViewModel, maskName, mapName, outDir string, o *options, logf monitoring.Logf) error {
	sel, err := vm.Select(maskName, mapName)
	if err != nil {
		return err
	}

	wopts := render.DefaultWaferOptions()
	wopts.Crosshairs = !o.noCrosshair
	wopts.Legend = !o.noLegend

	paths, err := render.WritePNGs(fs, outDir, sel, wopts)
	if err != nil {
		return err
	}

	base := filepath.Join(outDir, render.BaseName(sel))
	if o.html {
		var b strings.Builder
		if err := render.WriteHTML(&b, sel); err != nil {
			return err
		}
		path := base + ".html"
		if err := fs.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	report := export.NewReport(sel)
	if o.xlsx {
		path := base + ".xlsx"
		if err := export.WriteXLSX(fs, path, report); err != nil {
			return err
		}
		paths = append(paths, path)
	}
	if o.sqlitePath != "" {
		db, err := export.OpenReportDB(o.sqlitePath, logf.OrDiscard().With("db"))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Save(report); err != nil {
			return err
		}
		paths = append(paths, o.sqlitePath)
	}

	fmt.Fprintf(w, "%s/%s: %d die, radius %.2f-%.2f mm (mean %.2f)\n",
		sel.Mask.Name, sel.Map, sel.DieCount, sel.Stats.Min, sel.Stats.Max, sel.Stats.Mean)
	fmt.Fprintf(w, "report %s\n", report.ID)
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
	return nil
}
