// Package docparse pulls plain text out of uploaded example scripts.
package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

const MinContentLength = 100

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrTooShort    = errors.New("file content too short for training")
	// ErrNoText is returned for image-only or encrypted PDFs.
	ErrNoText = errors.New("PDF appears to be image-based or encrypted; use a text-based PDF or convert to DOCX/TXT")
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "text"
)

// DetectKind looks at the declared content type first, then the extension.
func DetectKind(fileName, contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case ct == "application/pdf" || ext == ".pdf":
		return KindPDF, nil
	case ct == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" || ext == ".docx":
		return KindDOCX, nil
	case ct == "text/plain" || ct == "text/markdown" || ext == ".txt" || ext == ".md":
		return KindText, nil
	}
	return "", ErrUnsupported
}

// Extract returns normalized text. Results shorter than MinContentLength fail with ErrTooShort.
func Extract(fileName, contentType string, data []byte) (string, error) {
	kind, err := DetectKind(fileName, contentType)
	if err != nil {
		return "", err
	}
	var text string
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	default:
		text = string(bytes.ToValidUTF8(data, []byte(" ")))
	}
	if err != nil {
		return "", err
	}
	text = Normalize(text)
	if utf8.RuneCountInString(text) < MinContentLength {
		return "", ErrTooShort
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The reader panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrNoText, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", ErrNoText
	}
	return string(b), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return docxText(rc)
	}
	return "", errors.New("docx is missing word/document.xml")
}

// docxText collects w:t runs; w:p ends a paragraph, w:tab and w:br become whitespace.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	manyNewlines    = regexp.MustCompile(`\n{3,}`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// Normalize strips control characters and collapses whitespace while keeping paragraph breaks.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlChars.ReplaceAllString(s, " ")
	s = horizontalSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = manyNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func WordCount(s string) int {
	return len(strings.Fields(s))
}
