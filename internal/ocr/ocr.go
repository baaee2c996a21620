// Package ocr turns raw image bytes into recognized text via a tesseract
// subprocess. Images are decoded and flattened to a normalized color format
// before recognition, mirroring what the recognition model expects.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Recognizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize decodes img, flattens it to RGBA, and runs tesseract over it.
// A decode or recognition failure is returned as an error; callers in the
// submission pipeline treat that as an empty contribution from this image.
func (r *Recognizer) Recognize(ctx context.Context, img []byte) (string, error) {
	start := time.Now()

	normalized, err := decodeToPNG(img)
	if err != nil {
		r.logger.Warn("ocr.decode_failed", "bytes", len(img), "error", err)
		return "", fmt.Errorf("decode image: %w", err)
	}

	tmp, err := os.CreateTemp("", "hrx-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			r.logger.Warn("ocr.temp_cleanup_failed", "path", path, "error", rmErr)
		}
	}()
	if _, err := tmp.Write(normalized); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	txt, err := r.tesseractOCR(ctx, path)
	if err != nil {
		return "", err
	}
	txt = Normalize(txt)

	r.logger.Debug("ocr.recognize_ok",
		"image_bytes", len(img),
		"text_len", len(txt),
		"lang", r.cfg.TesseractLang,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

func (r *Recognizer) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		r.logger.Warn("ocr.tesseract_failed", "path", filepath.Base(path), "stderr_bytes", len(errb))
		return "", fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil
}

// decodeToPNG decodes any registered image format and re-encodes it as PNG
// with the pixels flattened into plain RGBA.
func decodeToPNG(img []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, src, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
