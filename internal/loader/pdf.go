package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/ledongthuc/pdf"
)

// Extractor returns the plain text of the PDF at path.
type Extractor func(path string) (string, error)

// PDFLoader loads every .pdf file in a directory. The source tag is the file name.
type PDFLoader struct {
	dir     string
	extract Extractor
}

func NewPDFLoader(dir string) *PDFLoader {
	return NewPDFLoaderWithExtractor(dir, ExtractPDFText)
}

func NewPDFLoaderWithExtractor(dir string, extract Extractor) *PDFLoader {
	return &PDFLoader{dir: dir, extract: extract}
}

func (l *PDFLoader) Name() string { return "PDF" }

func (l *PDFLoader) Load(ctx context.Context) Result {
	var res Result

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		res.fail(l.dir, fmt.Errorf("failed to read directory: %w", err))
		return res
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsPDF(entry.Name()) {
			continue
		}
		if ctx.Err() != nil {
			res.fail(entry.Name(), ctx.Err())
			continue
		}

		text, err := l.extract(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			res.fail(entry.Name(), err)
			continue
		}
		res.add(domain.Document{Text: text, Source: entry.Name()})
	}

	return res
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ExtractPDFText concatenates the plain text of every page.
func ExtractPDFText(path string) (text string, err error) {
	// the parser panics on some corrupt xref tables
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		b.WriteString(content)
	}

	return b.String(), nil
}
