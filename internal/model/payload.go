package model

import "github.com/stemsi/exstem-paper/internal/numbering"

// The *Payload types are the request bodies sent to the remote API.

// SectionPayload is the body of POST /papers/{id}/sections and PUT /sections/{id}.
type SectionPayload struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Order        int    `json:"order"`
}

// PaperPayload is the body of POST /papers.
type PaperPayload struct {
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	ClassName       string `json:"class_name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SectionOrder is one entry of the full ordered tree save. Groups and
// questions carry their own positions so reorders at every level persist.
type SectionOrder struct {
	ID     ID           `json:"id"`
	Order  int          `json:"order"`
	Groups []GroupOrder `json:"groups"`
}

// GroupOrder is the position of a group within its section.
type GroupOrder struct {
	ID        ID              `json:"id"`
	Order     int             `json:"order"`
	Questions []QuestionOrder `json:"questions"`
}

// QuestionOrder is the position of a question within its group.
type QuestionOrder struct {
	ID    ID  `json:"id"`
	Order int `json:"order"`
}

// SectionOrderPayload is the body of PUT /papers/{id}/sections.
type SectionOrderPayload struct {
	Sections []SectionOrder `json:"sections"`
}

// GroupPayload is the body of POST /sections/{id}/groups and PUT /groups/{id}.
type GroupPayload struct {
	QuestionTypeID ID              `json:"question_type_id"`
	Instructions   string          `json:"instructions"`
	NumberingStyle numbering.Style `json:"numbering_style"`
	Logic          *string         `json:"logic"`
	ParagraphText  *string         `json:"paragraph_text"`
	Order          int             `json:"order"`
}

// QuestionPayload is the body of POST /groups/{id}/questions and PUT /questions/{id}.
// Fields irrelevant to the question type are sent as null.
type QuestionPayload struct {
	QuestionText  *string              `json:"question_text"`
	ParagraphText *string              `json:"paragraph_text"`
	CorrectAnswer *string              `json:"correct_answer"`
	Marks         int                  `json:"marks"`
	Order         int                  `json:"order"`
	Options       []OptionPayload      `json:"options"`
	SubQuestions  []SubQuestionPayload `json:"sub_questions"`
}

// OptionPayload is one option of a choice question.
type OptionPayload struct {
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order"`
}

// SubQuestionPayload is one sub-question or alternative.
type SubQuestionPayload struct {
	QuestionText string `json:"question_text"`
	Marks        int    `json:"marks"`
	SubOrder     int    `json:"sub_order"`
}
