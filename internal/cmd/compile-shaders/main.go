// Command compile-shaders validates every WGSL stage module with naga and
// writes the SPIR-V binaries, one <stage>.spv per stage.
//
// Usage:
//
//	go run ./internal/cmd/compile-shaders -out build/spv
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/tileraster/internal/frame"
	"github.com/gogpu/tileraster/internal/gpu"
)

func main() {
	out := flag.String("out", "spv", "output directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := compileAll(*out, logger); err != nil {
		logger.Error("compile failed", "error", err)
		os.Exit(1)
	}
}

func compileAll(dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var failed int
	for stage := range frame.StageCount {
		words, err := gpu.CompileSPIRV(stage)
		if err != nil {
			logger.Error("stage failed", "stage", stage.String(), "error", err)
			failed++
			continue
		}
		path := filepath.Join(dir, stage.String()+".spv")
		if err := os.WriteFile(path, spirvBytes(words), 0o644); err != nil {
			return err
		}
		logger.Info("compiled", "stage", stage.String(), "words", len(words), "path", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d stages failed", failed, frame.StageCount)
	}
	return nil
}

func spirvBytes(words []uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
	return b
}
