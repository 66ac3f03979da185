package util

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/klarus-hr/internal/logger"
	"github.com/gen2brain/go-fitz"
)

// minTextLength below which a PDF is assumed to be scanned and OCR is tried.
const minTextLength = 100

// ExtractCVText returns the plain text of a CV. Only PDFs are parsed; Word
// documents are stored without text and can be analyzed once re-uploaded as PDF.
func ExtractCVText(filename string, data []byte) (string, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return "", nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var text bytes.Buffer
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			logger.Warnw("PDF page text extraction failed", "page", n+1, "error", err)
			continue
		}
		text.WriteString(strings.TrimSpace(page))
		text.WriteString("\n\n")
	}

	result := strings.TrimSpace(text.String())
	if len(result) >= minTextLength {
		return result, nil
	}

	ocr, err := extractPDFOCR(doc)
	if err != nil {
		logger.Warnw("OCR fallback failed", "file", filename, "error", err)
		return result, nil
	}
	return ocr, nil
}

func extractPDFOCR(doc *fitz.Document) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			continue
		}

		pageText, err := ocrImage(img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			continue
		}
		if pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", fmt.Errorf("no text extracted from PDF")
	}
	return result, nil
}

func ocrImage(img image.Image) (string, error) {
	tmpFile, err := os.CreateTemp("", "cv-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	tmpFile.Close()

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w", err)
	}
	logger.Debugw("Tesseract available", "version", strings.Split(string(out), "\n")[0])
	return nil
}
