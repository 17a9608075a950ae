package paper

import "github.com/stemsi/exstem-paper/internal/model"

// FromTemplate builds a new paper from a template's skeleton. Every section,
// group and question gets a fresh local ID so the result never aliases the
// template's entities on the remote API.
func FromTemplate(t model.Template, meta model.Paper) model.Paper {
	p := meta
	p.ID = model.NewLocalID()
	p.Sections = make([]model.Section, 0, len(t.Sections))
	for _, src := range t.Sections {
		s := src.Clone()
		s.ID = model.NewLocalID()
		if s.Groups == nil {
			s.Groups = []model.QuestionGroup{}
		}
		for gi := range s.Groups {
			g := &s.Groups[gi]
			g.ID = model.NewLocalID()
			for qi := range g.Questions {
				g.Questions[qi].ID = model.NewLocalID()
				for oi := range g.Questions[qi].Options {
					g.Questions[qi].Options[oi].ID = model.NewLocalID()
				}
				for sqi := range g.Questions[qi].SubQuestions {
					g.Questions[qi].SubQuestions[sqi].ID = model.NewLocalID()
				}
			}
		}
		p.Sections = append(p.Sections, s)
	}
	Normalize(&p)
	renumber(&p)
	return p
}
