package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Engine extracts text from a pre-processed image. Abstracting the OCR engine
// keeps the parsing and correction logic testable without a Tesseract
// installation.
type Engine interface {
	Text(img image.Image, whitelist string) (string, error)
	Close() error
}

// TesseractEngine wraps a single gosseract client. Not safe for concurrent
// use; the supervisor loop is single-threaded so this never matters.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine builds the engine. tessdataPrefix may be empty to use
// the system default tessdata location.
func NewTesseractEngine(tessdataPrefix string) *TesseractEngine {
	client := gosseract.NewClient()
	if tessdataPrefix != "" {
		client.SetTessdataPrefix(tessdataPrefix)
	}
	client.SetLanguage("eng")
	client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	return &TesseractEngine{client: client}
}

func (e *TesseractEngine) Text(img image.Image, whitelist string) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image for OCR: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("setting OCR image: %w", err)
	}
	if whitelist != "" {
		if err := e.client.SetWhitelist(whitelist); err != nil {
			return "", fmt.Errorf("setting OCR whitelist: %w", err)
		}
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("running OCR: %w", err)
	}
	return text, nil
}

func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
