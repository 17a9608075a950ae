package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/render"
)

// Format is a render output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format; empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/html; charset=utf-8"
}

// RenderService produces print output from a paper tree.
type RenderService struct {
	fontPath string
}

// NewRenderService creates a new RenderService. PDF output needs fontPath.
func NewRenderService(fontPath string) *RenderService {
	return &RenderService{fontPath: fontPath}
}

// Render writes p in format f.
func (s *RenderService) Render(w io.Writer, p model.Paper, f Format) error {
	doc := render.Build(p)
	switch f {
	case FormatHTML:
		return render.HTML(w, doc)
	case FormatPDF:
		return render.PDF(w, doc, s.fontPath)
	case FormatXLSX:
		return render.MarksSheet(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Outline summarises p's numbering for preview clients.
func (s *RenderService) Outline(p model.Paper) render.Outline {
	return render.BuildOutline(render.Build(p))
}
