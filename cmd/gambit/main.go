package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gambitui/gambit/pkg/adaptive"
	"github.com/gambitui/gambit/pkg/config"
	"github.com/gambitui/gambit/pkg/export"
	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
	"github.com/gambitui/gambit/pkg/loader"
	"github.com/gambitui/gambit/pkg/prefs"
	"github.com/gambitui/gambit/pkg/ui"
	"github.com/gambitui/gambit/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	version := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", defaultConfigPath(), "Engine config file (YAML)")
	prefsPath := flag.String("prefs", defaultPrefsPath(), "Preferences database")
	watchPath := flag.String("watch", "", "Game file to watch for content changes")
	exportSVG := flag.String("export-svg", "", "Write a layout diagram for the current terminal size and exit")
	exportPNG := flag.String("export-png", "", "Write a rasterized layout diagram and exit")
	dumpState := flag.Bool("dump-state", false, "Print the engine state for the current terminal size as JSON and exit")
	flag.Parse()

	if *help {
		fmt.Println("Usage: gambit [options]")
		fmt.Println("\nLos Alamos chess with an adaptive panel layout.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *version {
		fmt.Println("gambit version 0.1.0")
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := prefs.Open(*prefsPath)
	if err != nil {
		fmt.Printf("Error opening preferences: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	// The settings form persists this toggle; it takes effect on the
	// next launch because the overflow handler is built once.
	if v, err := store.GetBool(prefs.KeySmoothScroll, cfg.SmoothScrolling); err == nil {
		cfg.SmoothScrolling = v
	}

	dims := startupViewport(store)

	host := ui.NewHost()
	system := adaptive.NewSystem(adaptive.Options{
		Config:          cfg,
		Tree:            host,
		Prober:          host,
		Scheduler:       host,
		Clock:           adaptive.SystemClock{},
		InitialViewport: dims,
	})
	ui.SetupElements(system, host)

	if err := system.Initialize(); err != nil {
		fmt.Printf("Error initializing layout engine: %v\n", err)
		os.Exit(1)
	}
	defer system.Destroy()

	if *dumpState {
		data, err := json.MarshalIndent(system.GetState(), "", "  ")
		if err != nil {
			fmt.Printf("Error encoding state: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if *exportSVG != "" || *exportPNG != "" {
		if err := exportDiagrams(system, dims, *exportSVG, *exportPNG); err != nil {
			fmt.Printf("Error exporting diagram: %v\n", err)
			os.Exit(1)
		}
		return
	}

	themeName, err := store.Get(prefs.KeyTheme, prefs.ThemeDark)
	if err != nil {
		themeName = prefs.ThemeDark
	}
	m := ui.NewDashboardModel(system, host, store, ui.ThemeByName(themeName))

	if *watchPath != "" {
		if records, err := loader.LoadGame(*watchPath); err == nil {
			m = m.WithMoves(recordMoves(records))
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	g, ctx := errgroup.WithContext(context.Background())

	if *watchPath != "" {
		path := *watchPath
		cw, err := watcher.NewContentWatcher(path, func() {
			records, err := loader.LoadGame(path)
			if err != nil {
				return
			}
			p.Send(ui.ContentLoadedMsg{Moves: recordMoves(records)})
		})
		if err != nil {
			fmt.Printf("Error watching %s: %v\n", *watchPath, err)
			os.Exit(1)
		}
		g.Go(func() error {
			<-ctx.Done()
			return cw.Close()
		})
	}

	g.Go(func() error {
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Error running gambit: %v\n", err)
		os.Exit(1)
	}
}

func recordMoves(records []loader.MoveRecord) []string {
	moves := make([]string, 0, len(records))
	for _, rec := range records {
		moves = append(moves, rec.Move)
	}
	return moves
}

// startupViewport sizes the engine before the first WindowSizeMsg: the
// live terminal if stdout is one, else the last saved window, else the
// engine minimum.
func startupViewport(store *prefs.Store) geometry.ViewportDimensions {
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		w, h := ui.CellsToPixels(cols, rows)
		return geometry.NewViewportDimensions(w, h, 1)
	}
	if w, h, ok, err := store.LastWindowSize(); err == nil && ok {
		return geometry.NewViewportDimensions(w, h, 1)
	}
	return geometry.NewViewportDimensions(1280, 800, 1)
}

// exportDiagrams writes the engine's current decision as SVG and/or PNG.
func exportDiagrams(system *adaptive.System, dims geometry.ViewportDimensions, svgPath, pngPath string) error {
	st := system.GetState()
	if st.LayoutState == nil {
		return fmt.Errorf("no layout state to export")
	}

	kinds := map[string]layout.ElementKind{
		adaptive.ElementLeftControls:  layout.KindControl,
		adaptive.ElementRightControls: layout.KindControl,
		adaptive.ElementMoveHistory:   layout.KindInfo,
		adaptive.ElementAnalysisPanel: layout.KindInfo,
		adaptive.ElementSettingsMenu:  layout.KindMenu,
	}
	d := export.NewDiagram(dims, st.LayoutState.Config, kinds)

	if svgPath != "" {
		if err := d.WriteSVG(svgPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if pngPath != "" {
		if err := d.WritePNG(pngPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	return nil
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gambit", "config.yaml")
	}
	return "gambit.yaml"
}

func defaultPrefsPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gambit", "prefs.db")
	}
	return "gambit-prefs.db"
}
