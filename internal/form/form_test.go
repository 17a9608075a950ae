package form

import (
	"errors"
	"testing"

	"github.com/stemsi/exstem-paper/internal/model"
)

func TestNewDefaults(t *testing.T) {
	mcq, err := New(model.QuestionTypeMCQ)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(mcq.(*MCQ).Choices); got != 2 {
		t.Errorf("mcq choices = %d, want 2", got)
	}

	tf, _ := New(model.QuestionTypeTrueFalse)
	choices := tf.(*TrueFalse).Choices
	if len(choices) != 2 || choices[0].Text != "True" || choices[1].Text != "False" {
		t.Errorf("true-false choices = %+v", choices)
	}

	cond, _ := New(model.QuestionTypeConditional)
	if got := len(cond.(*Conditional).SubQuestions); got != 2 {
		t.Errorf("conditional alternatives = %d, want 2", got)
	}

	if _, err := New("essay"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("New(essay) err = %v, want ErrUnknownType", err)
	}
}

func TestSwitchResetsTypeFields(t *testing.T) {
	src := &Descriptive{
		Kind:         model.QuestionTypeShortAnswer,
		QuestionText: "Explain osmosis",
		SubQuestions: []SubQuestion{{QuestionText: "a", Marks: 1}},
	}

	long, err := Switch(src, model.QuestionTypeLongAnswer)
	if err != nil {
		t.Fatal(err)
	}
	d := long.(*Descriptive)
	if d.Kind != model.QuestionTypeLongAnswer || len(d.SubQuestions) != 1 {
		t.Errorf("short→long lost shared fields: %+v", d)
	}

	mcq, err := Switch(src, model.QuestionTypeMCQ)
	if err != nil {
		t.Fatal(err)
	}
	m := mcq.(*MCQ)
	if m.QuestionText != "Explain osmosis" {
		t.Errorf("text not carried: %q", m.QuestionText)
	}
	if len(m.Choices) != 2 || m.Choices[0].Text != "" {
		t.Errorf("choices not reset: %+v", m.Choices)
	}
}

func TestDecodeCorrectIndex(t *testing.T) {
	f, err := Decode([]byte(`{"question_type":"mcq","question_text":"Capital?","choices":[{"text":"Rome"},{"text":"Paris"},{"text":"Oslo"}],"correct_index":1,"marks":2}`))
	if err != nil {
		t.Fatal(err)
	}
	m, ok := f.(*MCQ)
	if !ok {
		t.Fatalf("got %T", f)
	}
	if m.CorrectIndex() != 1 || m.Marks != 2 {
		t.Errorf("got %+v", m)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := &Paragraph{
		QuestionText:  "Read the passage",
		ParagraphText: "Once upon a time",
		SubQuestions:  []SubQuestion{{QuestionText: "Who?", Marks: 2}},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	p := out.(*Paragraph)
	if p.ParagraphText != in.ParagraphText || len(p.SubQuestions) != 1 || p.SubQuestions[0].Marks != 2 {
		t.Errorf("got %+v", p)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode([]byte(`{"question_type":"matrix"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v", err)
	}
}
