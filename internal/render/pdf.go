package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/signintech/gopdf"
)

// ErrNoFont is returned when PDF output is requested without a TTF font.
var ErrNoFont = errors.New("render: pdf font path not configured")

const (
	pdfFamily   = "paper"
	pdfMargin   = 50.0
	pdfBodySize = 11
	pdfLineH    = 15.0
	pdfNumW     = 30.0
	pdfMarksW   = 40.0
)

type pdfWriter struct {
	pdf   *gopdf.GoPdf
	width float64
	limit float64
}

// PDF writes doc as an A4 PDF using the TrueType font at fontPath.
func PDF(w io.Writer, doc Document, fontPath string) error {
	if fontPath == "" {
		return ErrNoFont
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFont(pdfFamily, fontPath); err != nil {
		return fmt.Errorf("render pdf: load font: %w", err)
	}

	pw := &pdfWriter{
		pdf:   pdf,
		width: gopdf.PageSizeA4.W - 2*pdfMargin,
		limit: gopdf.PageSizeA4.H - pdfMargin,
	}
	if err := pw.document(doc); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Write(w)
}

func (pw *pdfWriter) newPage() {
	pw.pdf.AddPage()
	pw.pdf.SetXY(pdfMargin, pdfMargin)
}

// ensure starts a new page when fewer than h points remain.
func (pw *pdfWriter) ensure(h float64) {
	if pw.pdf.GetY()+h > pw.limit {
		pw.newPage()
	}
}

func (pw *pdfWriter) font(size int) error {
	return pw.pdf.SetFont(pdfFamily, "", size)
}

// centered writes one centered line.
func (pw *pdfWriter) centered(text string, size int) error {
	if err := pw.font(size); err != nil {
		return err
	}
	lineH := float64(size) * 1.4
	pw.ensure(lineH)
	pw.pdf.SetX(pdfMargin)
	rect := &gopdf.Rect{W: pw.width, H: lineH}
	if err := pw.pdf.CellWithOption(rect, text, gopdf.CellOption{Align: gopdf.Center}); err != nil {
		return err
	}
	pw.pdf.Br(lineH)
	return nil
}

// wrapped writes text inside a column starting at x with the given width.
func (pw *pdfWriter) wrapped(x, width float64, text string) error {
	if text == "" {
		return nil
	}
	lines, err := pw.pdf.SplitText(text, width)
	if err != nil {
		return err
	}
	for _, line := range lines {
		pw.ensure(pdfLineH)
		pw.pdf.SetX(x)
		if err := pw.pdf.Cell(&gopdf.Rect{W: width, H: pdfLineH}, line); err != nil {
			return err
		}
		pw.pdf.Br(pdfLineH)
	}
	return nil
}

// marks writes a right-aligned "[n]" on the current line.
func (pw *pdfWriter) marks(n int, y float64) error {
	if n == 0 {
		return nil
	}
	saved := pw.pdf.GetY()
	pw.pdf.SetXY(pdfMargin+pw.width-pdfMarksW, y)
	rect := &gopdf.Rect{W: pdfMarksW, H: pdfLineH}
	if err := pw.pdf.CellWithOption(rect, "["+strconv.Itoa(n)+"]", gopdf.CellOption{Align: gopdf.Right}); err != nil {
		return err
	}
	pw.pdf.SetY(saved)
	return nil
}

func (pw *pdfWriter) document(doc Document) error {
	pw.newPage()
	if err := pw.centered(doc.Title, 16); err != nil {
		return err
	}

	meta := "Max. Marks: " + strconv.Itoa(doc.TotalMarks)
	if doc.DurationMinutes > 0 {
		meta = "Time: " + strconv.Itoa(doc.DurationMinutes) + " min    " + meta
	}
	if doc.Subject != "" {
		meta = doc.Subject + "    " + meta
	}
	if err := pw.centered(meta, pdfBodySize); err != nil {
		return err
	}
	pw.pdf.Line(pdfMargin, pw.pdf.GetY(), pdfMargin+pw.width, pw.pdf.GetY())
	pw.pdf.Br(pdfLineH)

	for _, s := range doc.Sections {
		if err := pw.centered(s.Title, 13); err != nil {
			return err
		}
		if err := pw.font(pdfBodySize); err != nil {
			return err
		}
		if err := pw.wrapped(pdfMargin, pw.width, s.Instructions); err != nil {
			return err
		}
		for _, g := range s.Groups {
			if err := pw.group(g); err != nil {
				return err
			}
		}
		pw.pdf.Br(pdfLineH / 2)
	}
	return nil
}

func (pw *pdfWriter) group(g Group) error {
	if err := pw.wrapped(pdfMargin, pw.width, g.Instructions); err != nil {
		return err
	}
	if err := pw.wrapped(pdfMargin+pdfNumW/2, pw.width-pdfNumW, g.Passage); err != nil {
		return err
	}

	bodyX := pdfMargin + pdfNumW
	bodyW := pw.width - pdfNumW - pdfMarksW
	for _, it := range g.Items {
		if err := pw.wrapped(bodyX, bodyW, it.Passage); err != nil {
			return err
		}

		pw.ensure(pdfLineH)
		top := pw.pdf.GetY()
		pw.pdf.SetX(pdfMargin)
		if err := pw.pdf.Cell(&gopdf.Rect{W: pdfNumW, H: pdfLineH}, it.Label+"."); err != nil {
			return err
		}
		pw.pdf.SetY(top)
		if it.Text == "" {
			pw.pdf.Br(pdfLineH)
		}
		if err := pw.wrapped(bodyX, bodyW, it.Text); err != nil {
			return err
		}
		if err := pw.marks(it.Marks, top); err != nil {
			return err
		}

		for _, o := range it.Options {
			if err := pw.wrapped(bodyX, bodyW, o.Label+". "+o.Text); err != nil {
				return err
			}
		}
		for _, sub := range it.Subs {
			if sub.OR {
				if err := pw.wrapped(bodyX, bodyW, ORMarker); err != nil {
					return err
				}
			}
			subTop := pw.pdf.GetY()
			if err := pw.wrapped(bodyX+pdfNumW/2, bodyW-pdfNumW/2, sub.Label+" "+sub.Text); err != nil {
				return err
			}
			if err := pw.marks(sub.Marks, subTop); err != nil {
				return err
			}
		}
		if len(it.Subs) == 0 && it.AnswerLines > 0 {
			pw.ensure(float64(it.AnswerLines) * pdfLineH)
			for i := 0; i < it.AnswerLines; i++ {
				pw.pdf.Br(pdfLineH)
				y := pw.pdf.GetY()
				pw.pdf.Line(bodyX, y, bodyX+bodyW, y)
			}
			pw.pdf.Br(pdfLineH / 2)
		}
	}
	return nil
}
