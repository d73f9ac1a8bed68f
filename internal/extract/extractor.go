// Package extract pulls plain text out of uploaded resume files.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/Abraxas-365/cvscreen/pkg/errx"
)

// Caps keep pathological documents from blowing up memory or the
// embedding pipeline downstream.
const (
	MaxPDFPages       = 50
	MaxExtractedChars = 100_000
)

var ErrRegistry = errx.NewRegistry("EXTRACT")

var (
	CodeUnsupportedType = ErrRegistry.Register("UNSUPPORTED_TYPE", errx.TypeValidation, http.StatusBadRequest, "Unsupported file type")
	CodeParseFailed     = ErrRegistry.Register("PARSE_FAILED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Failed to extract text from file")
)

// FileType is the set of formats the extractor understands.
type FileType int

const (
	FileTypeUnsupported FileType = iota
	FileTypePDF
	FileTypeDOCX
)

// FileTypeFromName classifies a file by its extension, case-insensitive.
func FileTypeFromName(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileTypePDF
	case ".docx":
		return FileTypeDOCX
	default:
		return FileTypeUnsupported
	}
}

// Extractor turns resume file bytes into plain text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText extracts text from an in-memory document. A valid document
// with no text layer (scanned image PDF) yields an empty string, not an
// error.
func (e *Extractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch FileTypeFromName(filename) {
	case FileTypePDF:
		return e.extractPDF(data)
	case FileTypeDOCX:
		return e.extractDOCX(data)
	default:
		return "", ErrRegistry.New(CodeUnsupportedType).WithDetail("filename", filename)
	}
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeParseFailed, err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages > MaxPDFPages {
		pages = MaxPDFPages
	}

	var parts []string
	total := 0
	for i := 0; i < pages; i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", ErrRegistry.NewWithCause(CodeParseFailed, err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		parts = append(parts, pageText)
		total += len(pageText)
		if total >= MaxExtractedChars {
			break
		}
	}

	return capChars(strings.Join(parts, "\n")), nil
}

func (e *Extractor) extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeParseFailed, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", ErrRegistry.New(CodeParseFailed).WithDetail("reason", "word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeParseFailed, err)
	}
	defer rc.Close()

	text, err := walkDocumentXML(rc)
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeParseFailed, err)
	}

	return capChars(text), nil
}

// walkDocumentXML streams the WordprocessingML body, collecting character
// data and inserting newlines at paragraph and line-break boundaries.
func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
		if buf.Len() >= MaxExtractedChars {
			break
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func capChars(s string) string {
	if len(s) > MaxExtractedChars {
		return s[:MaxExtractedChars]
	}
	return s
}
