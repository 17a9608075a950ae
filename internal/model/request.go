package model

// CreateSectionRequest is the payload for adding a section to a paper.
type CreateSectionRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=255"`
	Instructions string `json:"instructions" binding:"max=5000"`
}

// UpdateSectionRequest is the payload for editing a section.
type UpdateSectionRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=255"`
	Instructions string `json:"instructions" binding:"max=5000"`
}

// CreateGroupRequest is the payload for adding a question group to a section.
type CreateGroupRequest struct {
	QuestionType   string `json:"question_type" binding:"required,oneof=mcq true-false fill-in-blanks short-answer long-answer paragraph conditional"`
	Instructions   string `json:"instructions" binding:"max=5000"`
	NumberingStyle string `json:"numbering_style" binding:"omitempty,oneof=numeric roman alphabetic"`
	Logic          string `json:"logic" binding:"omitempty,eq=OR"`
	ParagraphText  string `json:"paragraph_text" binding:"max=20000"`
}

// UpdateGroupRequest is the payload for editing a question group.
// QuestionType, when sent, must match the existing type.
type UpdateGroupRequest struct {
	QuestionType   string `json:"question_type" binding:"omitempty,oneof=mcq true-false fill-in-blanks short-answer long-answer paragraph conditional"`
	Instructions   string `json:"instructions" binding:"max=5000"`
	NumberingStyle string `json:"numbering_style" binding:"omitempty,oneof=numeric roman alphabetic"`
	Logic          string `json:"logic" binding:"omitempty,eq=OR"`
	ParagraphText  string `json:"paragraph_text" binding:"max=20000"`
}

// InstantiateTemplateRequest is the payload for creating a draft paper from a template.
type InstantiateTemplateRequest struct {
	Title           string `json:"title" binding:"required,min=1,max=255"`
	Subject         string `json:"subject" binding:"max=100"`
	ClassName       string `json:"class_name" binding:"max=100"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=600"`
}
