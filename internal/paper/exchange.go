package paper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/stemsi/exstem-paper/internal/model"
)

// ErrMalformedImport is returned when an imported file is not a paper tree.
var ErrMalformedImport = errors.New("malformed import file")

// Export writes p as indented JSON.
func Export(w io.Writer, p model.Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("export paper: %w", err)
	}
	return nil
}

// Import reads a paper previously written by Export. Missing numbering styles
// default to numeric and entities without IDs get local ones. The format is
// not versioned.
func Import(r io.Reader) (model.Paper, error) {
	var p model.Paper
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return model.Paper{}, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if p.Sections == nil {
		return model.Paper{}, fmt.Errorf("%w: no sections", ErrMalformedImport)
	}

	for si := range p.Sections {
		s := &p.Sections[si]
		if s.ID == "" {
			s.ID = model.NewLocalID()
		}
		for gi := range s.Groups {
			g := &s.Groups[gi]
			if g.ID == "" {
				g.ID = model.NewLocalID()
			}
			if !g.QuestionType.Valid() {
				return model.Paper{}, fmt.Errorf("%w: group %d of section %d has question type %q", ErrMalformedImport, gi+1, si+1, g.QuestionType)
			}
			for qi := range g.Questions {
				if g.Questions[qi].ID == "" {
					g.Questions[qi].ID = model.NewLocalID()
				}
			}
		}
	}
	Normalize(&p)
	return p, nil
}
