package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/plate-tools-mcp/internal/api"
	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
)

// recognizeLine is printed to stdout for each image.
type recognizeLine struct {
	Path      string           `json:"path"`
	Plate     string           `json:"plate"`
	Summary   string           `json:"summary,omitempty"`
	Annotated string           `json:"annotated,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

// runRecognize processes every image named in args and returns the exit
// code: 0 when all images were read, 1 when any could not be loaded.
func runRecognize(ctx context.Context, p *pipeline.Pipeline, args []string) int {
	fs := flag.NewFlagSet("recognize", flag.ContinueOnError)
	dir := fs.String("dir", "", "process every image in `DIR`")
	annotateDir := fs.String("annotate", "", "write annotated images into `DIR`")
	debugDir := fs.String("debug-dir", "", "write intermediate images into `DIR`")
	quiet := fs.Bool("quiet", false, "do not print progress")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths := fs.Args()
	if *dir != "" {
		found, err := listImages(*dir)
		if err != nil {
			log.Printf("ERROR: %v", err)
			return 1
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "recognize: no images given")
		return 2
	}

	if !*quiet {
		p = p.WithProgress(func(msg string) { log.Print(msg) })
	}

	enc := json.NewEncoder(os.Stdout)
	code := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return 1
		}
		line := recognizeOne(ctx, p, path, *annotateDir, *debugDir)
		if line.Error != "" {
			code = 1
		}
		if err := enc.Encode(line); err != nil {
			log.Printf("Failed to encode result: %v", err)
			return 1
		}
	}
	return code
}

func recognizeOne(ctx context.Context, p *pipeline.Pipeline, path, annotateDir, debugDir string) recognizeLine {
	line := recognizeLine{Path: path}

	res, err := p.Process(ctx, path)
	if res != nil {
		line.Result = res
		line.Plate = res.Plate()
		line.Summary = res.Summary()
	}
	if err != nil {
		line.Error = err.Error()
		return line
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if annotateDir != "" {
		out, err := writeAnnotated(res, annotateDir, name)
		if err != nil {
			log.Printf("warning: %v", err)
		}
		line.Annotated = out
	}
	if debugDir != "" {
		if _, err := res.WriteDebugImages(filepath.Join(debugDir, name)); err != nil {
			log.Printf("warning: %v", err)
		}
	}
	return line
}

func writeAnnotated(res *pipeline.Result, dir, name string) (string, error) {
	img, err := res.Annotate()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create annotation directory: %w", err)
	}
	out := filepath.Join(dir, name+"_annotated.png")
	if err := imaging.Save(img, out); err != nil {
		return "", err
	}
	return out, nil
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func runServe(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.HTTPAddr, "listen `address`")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	return api.ListenAndServe(ctx, *addr, api.NewRouter(p, cfg.Debug))
}
