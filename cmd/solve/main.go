// Command solve runs the PDPTW solver over one or more instance files from
// the command line, reporting vehicles/distance against the best-known
// table and writing a solution file alongside each instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arenadelta/pdptw-solver/internal/bestknown"
	"github.com/arenadelta/pdptw-solver/internal/buildinfo"
	"github.com/arenadelta/pdptw-solver/internal/config"
	"github.com/arenadelta/pdptw-solver/internal/instanceio"
	"github.com/arenadelta/pdptw-solver/internal/pdptw"
)

func main() {
	var (
		timeLimit  = flag.Duration("time-limit", 60*time.Second, "wall-clock budget per instance")
		seed       = flag.Int64("seed", 0, "RNG seed")
		configPath = flag.String("config", "config/solver.yaml", "path to solver defaults YAML")
		outDir     = flag.String("out", "", "directory for .sol output files (default: alongside each instance)")
		verbose    = flag.Bool("v", false, "log progress events")
		showVer    = flag.Bool("version", false, "print build version and exit")
	)
	flag.Parse()

	if *showVer {
		info := buildinfo.Info()
		fmt.Printf("solve %s (commit %s, built %s)\n", info["version"], info["commit"], info["builtAt"])
		return
	}

	if flag.NArg() == 0 {
		log.Fatal("usage: solve [flags] <instance-file> [more instance files...]")
	}

	defaults, err := config.LoadSolverDefaults(*configPath)
	if err != nil {
		log.Printf("solver defaults: %v (using built-in defaults)", err)
	}
	cfg := defaults.ToPDPTWConfig()
	cfg.TimeLimit = *timeLimit
	cfg.Seed = *seed

	bks := bestknown.Embedded{}

	fmt.Printf("%-16s %6s %10s %10s %10s %8s %8s\n", "instance", "veh", "distance", "bks_veh", "bks_dist", "gap_v%", "gap_d%")
	for _, path := range flag.Args() {
		if err := runOne(path, cfg, bks, *outDir, *verbose); err != nil {
			log.Printf("%s: %v", path, err)
		}
	}
}

func runOne(path string, cfg pdptw.Config, bks bestknown.Store, outDir string, verbose bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	inst, err := instanceio.ParseInstance(name, f)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if verbose {
		cfg.Progress = func(evt pdptw.ProgressEvent) {
			log.Printf("%s: %s iter=%d vehicles=%d distance=%d", name, evt.Kind, evt.Iteration, evt.Cost.Vehicles, evt.Cost.Distance)
		}
	}

	result := pdptw.Solve(context.Background(), inst, cfg)
	if result.Status != pdptw.StatusOK || result.Solution == nil {
		fmt.Printf("%-16s %6s %10s (status: %s)\n", name, "-", "-", result.Status)
		return nil
	}

	cost := result.Solution.Cost(inst)
	bksRow := "-"
	bksDist := "-"
	gapV, gapD := "-", "-"
	if entry, ok, err := bks.Lookup(context.Background(), name); err == nil && ok {
		bksRow = fmt.Sprintf("%d", entry.Vehicles)
		bksDist = fmt.Sprintf("%.2f", entry.Distance)
		if entry.Vehicles > 0 {
			gapV = fmt.Sprintf("%+.1f", 100*float64(cost.Vehicles-entry.Vehicles)/float64(entry.Vehicles))
		}
		if entry.Distance > 0 {
			gapD = fmt.Sprintf("%+.1f", 100*(float64(cost.Distance)-entry.Distance)/entry.Distance)
		}
	}
	fmt.Printf("%-16s %6d %10d %10s %10s %8s %8s\n", name, cost.Vehicles, cost.Distance, bksRow, bksDist, gapV, gapD)

	return writeSolutionFile(path, name, outDir, inst, result.Solution)
}

func writeSolutionFile(instPath, name, outDir string, inst *pdptw.Instance, sol *pdptw.Solution) error {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(instPath)
	}
	out, err := os.Create(filepath.Join(dir, name+".sol"))
	if err != nil {
		return fmt.Errorf("write solution: %w", err)
	}
	defer out.Close()

	meta := instanceio.SolutionMeta{
		InstanceName: name,
		Authors:      "pdptw-solver",
		Date:         time.Now().UTC().Format("2006-01-02"),
		Reference:    "ILS/LNS/AGES",
	}
	return instanceio.WriteSolution(out, meta, sol)
}
