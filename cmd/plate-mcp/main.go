package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/ocr"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
	"github.com/ironsheep/plate-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("plate-mcp - Brazilian license plate reader (MCP server, CLI and HTTP API)")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  plate-mcp                      Run the MCP server on stdin/stdout")
	fmt.Println("  plate-mcp recognize [flags] IMAGE...")
	fmt.Println("                                 Read the plate of each image, one JSON line per image")
	fmt.Println("      -dir DIR                   Also process every PNG/JPEG/GIF in DIR")
	fmt.Println("      -annotate DIR              Write <name>_annotated.png into DIR")
	fmt.Println("      -debug-dir DIR             Write intermediate images into DIR/<name>/")
	fmt.Println("      -quiet                     Do not print progress to stderr")
	fmt.Println("  plate-mcp serve [-addr :8080]  Run the HTTP API")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  PLATE_MCP_LOG_LEVEL=debug        Enable debug logging")
	fmt.Println("  TESSDATA_PREFIX=DIR              Tesseract trained data directory")
	fmt.Println("  PLATE_TESSERACT_LANG=eng         Tesseract language")
	fmt.Println("  PLATE_REKOGNITION_ENABLED=true   Use AWS Rekognition as second backend")
	fmt.Println("  AWS_REGION=us-east-1             Rekognition region")
	fmt.Println("  PLATE_TUNING_FILE=FILE           YAML overrides of the detection heuristics")
	fmt.Println("  PLATE_HTTP_ADDR=:8080            Default listen address of serve")
}

func main() {
	args := os.Args[1:]
	command := ""
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("plate-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "recognize", "serve":
			command, args = args[0], args[1:]
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
			usage()
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol and JSON results)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	if cfg.Debug {
		log.Printf("Plate MCP v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closeEngines, err := buildPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	defer closeEngines()

	switch command {
	case "recognize":
		code := runRecognize(ctx, p, args)
		closeEngines()
		stop()
		os.Exit(code)
	case "serve":
		err = runServe(ctx, p, cfg, args)
	default:
		err = server.New(p, Version).Run(ctx)
	}
	if !isShutdown(err) {
		log.Fatalf("Server error: %v", err)
	}
}

// isShutdown reports whether err is nil or the, possibly wrapped,
// cancellation from a shutdown signal.
func isShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// buildPipeline loads the tuning table and opens both OCR backends. A backend
// that cannot start is logged and replaced by ocr.Unavailable.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	tuning := config.DefaultTuning()
	if cfg.TuningFile != "" {
		t, err := config.LoadTuning(cfg.TuningFile)
		if err != nil {
			return nil, nil, err
		}
		tuning = t
	}

	tess := ocr.NewTesseract(cfg.TesseractLanguage, cfg.TessdataPrefix)
	var primary ocr.Engine = tess
	if !tess.Available() {
		info := ocr.Describe(tess)
		log.Printf("warning: tesseract unavailable: %s", info.Error)
	}

	var secondary ocr.Engine = ocr.Unavailable{EngineName: "rekognition", Reason: "disabled (PLATE_REKOGNITION_ENABLED=false)"}
	if cfg.RekognitionEnabled {
		rek, err := ocr.NewRekognitionFromRegion(ctx, cfg.AWSRegion)
		if err != nil {
			log.Printf("warning: rekognition unavailable: %v", err)
			secondary = ocr.Unavailable{EngineName: "rekognition", Reason: err.Error()}
		} else {
			secondary = rek
		}
	}

	if cfg.Debug {
		for _, e := range []ocr.Engine{primary, secondary} {
			info := ocr.Describe(e)
			log.Printf("OCR backend %s: available=%t version=%s %s", info.Name, info.Available, info.Version, info.Backend)
		}
	}

	closed := false
	closeEngines := func() {
		if closed {
			return
		}
		closed = true
		if err := tess.Close(); err != nil {
			log.Printf("warning: closing tesseract: %v", err)
		}
	}
	return pipeline.New(primary, secondary, tuning), closeEngines, nil
}
