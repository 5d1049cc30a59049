package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
)

type PDFParserService interface {
	// ExtractText returns the text of every page in page order. A document
	// without extractable text yields "" and no error.
	ExtractText(data []byte) (string, error)
	ExtractTextFromFile(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FilePath  string
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(data []byte) (string, error) {
	content, err := extract(data)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

func (p *pdfParserService) ExtractTextFromFile(filePath string) (*PDFContent, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	content, err := extract(data)
	if err != nil {
		return nil, err
	}
	content.FilePath = filePath
	return content, nil
}

func extract(data []byte) (content *PDFContent, err error) {
	const op = "pdf.ExtractText"

	if len(data) == 0 {
		return nil, apperr.E(apperr.KindExtraction, op, "empty file", nil)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, apperr.E(apperr.KindExtraction, op, "file is not a PDF", nil)
	}

	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = apperr.E(apperr.KindExtraction, op, "corrupted PDF", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apperr.E(apperr.KindExtraction, op, "failed to open PDF", err)
	}

	content, err = readPages(r)
	if err != nil {
		return nil, apperr.E(apperr.KindExtraction, op, "failed to read PDF", err)
	}
	return content, nil
}

func readPages(r *pdf.Reader) (*PDFContent, error) {
	var pages []string
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageIndex, err)
		}
		if t := CleanText(text); t != "" {
			pages = append(pages, t)
		}
	}

	return &PDFContent{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: totalPage,
	}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
