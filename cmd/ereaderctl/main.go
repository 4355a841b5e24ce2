// Command ereaderctl is a demo host for the reader engine: it drives
// load_font, load_book, paginate, render_page and search_text end to end
// from the command line, the way cmd/fbc drove the teacher's conversion
// pipeline.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ereader/engine"
)

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func loadFonts(eng *engine.Engine, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("unable to read font directory: %w", err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read font file %q: %w", path, err)
		}
		name := ent.Name()[:len(ent.Name())-len(filepath.Ext(ent.Name()))]
		if err := eng.LoadFont(name, data); err != nil {
			return fmt.Errorf("unable to load font %q: %w", name, err)
		}
	}
	return nil
}

// run wires together load_font, load_book, paginate and render_page to
// produce one PNG per page under outDir, mirroring the operation order a
// real host would invoke.
func run(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))
	defer func() { _ = log.Sync() }()

	eng := engine.Init(log)

	if dir := cmd.String("fonts"); dir != "" {
		if err := loadFonts(eng, dir); err != nil {
			return err
		}
	}

	bookPath := cmd.Args().First()
	if bookPath == "" {
		return fmt.Errorf("missing SOURCE book JSON path")
	}
	data, err := os.ReadFile(bookPath)
	if err != nil {
		return fmt.Errorf("unable to read book %q: %w", bookPath, err)
	}

	loadRes, err := eng.LoadBook(data)
	if err != nil {
		return fmt.Errorf("unable to load book: %w", err)
	}
	log.Info("book loaded", zap.Int("chapters", loadRes.ChapterCount))

	width, height := int(cmd.Int("width")), int(cmd.Int("height"))
	pageRes, err := eng.Paginate(width, height)
	if err != nil {
		return fmt.Errorf("unable to paginate: %w", err)
	}
	log.Info("book paginated", zap.Int("totalPages", pageRes.TotalPages))

	outDir := cmd.String("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}
		for i := 0; i < pageRes.TotalPages; i++ {
			pix, err := eng.RenderPage(i, width, height)
			if err != nil {
				log.Warn("unable to render page", zap.Int("page", i), zap.Error(err))
				continue
			}
			img := &image.RGBA{Pix: pix, Stride: 4 * width, Rect: image.Rect(0, 0, width, height)}
			outPath := filepath.Join(outDir, fmt.Sprintf("page-%04d.png", i))
			if err := writePNG(outPath, img); err != nil {
				return fmt.Errorf("unable to write %q: %w", outPath, err)
			}
		}
		log.Info("pages rendered", zap.String("dir", outDir))
	}

	if query := cmd.String("search"); query != "" {
		hits, err := eng.SearchText(query)
		if err != nil {
			return fmt.Errorf("unable to search: %w", err)
		}
		for _, h := range hits {
			fmt.Printf("page %d (%s): %s\n", h.PageIndex, h.ChapterTitle, h.Snippet)
		}
	}

	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:            "ereaderctl",
		Usage:           "demo host for the e-book reader engine",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Action:          run,
		ArgsUsage:       "SOURCE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging"},
			&cli.StringFlag{Name: "fonts", Usage: "directory of font files to register before loading the book"},
			&cli.StringFlag{Name: "out", Usage: "directory to write rendered page PNGs to"},
			&cli.IntFlag{Name: "width", Value: 800, Usage: "render container width in pixels"},
			&cli.IntFlag{Name: "height", Value: 600, Usage: "render container height in pixels"},
			&cli.StringFlag{Name: "search", Usage: "run search_text against the loaded book after pagination"},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ereaderctl:", err)
		os.Exit(1)
	}
}
