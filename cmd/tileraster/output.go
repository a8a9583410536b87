package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// imageFormat is an output encoding chosen by file extension.
type imageFormat int

const (
	formatPNG imageFormat = iota
	formatBMP
	formatTIFF
)

func formatFor(path string) (imageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return formatPNG, nil
	case ".bmp":
		return formatBMP, nil
	case ".tif", ".tiff":
		return formatTIFF, nil
	default:
		return 0, fmt.Errorf("unsupported output extension in %q (want .png, .bmp or .tiff)", path)
	}
}

// writeImage encodes img to path in the format of its extension.
func writeImage(path string, img image.Image) (err error) {
	format, err := formatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch format {
	case formatBMP:
		return bmp.Encode(f, img)
	case formatTIFF:
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return png.Encode(f, img)
	}
}
