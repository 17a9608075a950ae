package model

// Resource names an administrative collection on the remote API.
type Resource string

const (
	ResourceClasses        Resource = "classes"
	ResourceSubjects       Resource = "subjects"
	ResourceStudyMaterials Resource = "study-materials"
)

// Class represents a school class.
type Class struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
}

// Subject represents an academic subject.
type Subject struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// StudyMaterial is a reference document attached to a subject and class.
type StudyMaterial struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	SubjectID ID     `json:"subject_id"`
	ClassID   ID     `json:"class_id"`
	URL       string `json:"url,omitempty"`
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	GradeLevel int    `json:"grade_level" binding:"min=0,max=20"`
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Code string `json:"code" binding:"max=20"`
}

// StudyMaterialRequest is the payload for creating or updating study material metadata.
type StudyMaterialRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=255"`
	SubjectID string `json:"subject_id" binding:"required"`
	ClassID   string `json:"class_id" binding:"required"`
	URL       string `json:"url" binding:"omitempty,url"`
}
