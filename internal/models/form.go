package models

import "time"

type FormStatus string

const (
	FormStatusEditing   FormStatus = "Editing"
	FormStatusPublished FormStatus = "Published"
	FormStatusRevised   FormStatus = "Revised"
	FormStatusHidden    FormStatus = "Hidden"
)

// Form is an admin-authored questionnaire template bound to a compliance
// category. Only Published forms can be filled.
type Form struct {
	ID         uint                `json:"id" gorm:"primaryKey"`
	CategoryID uint                `json:"category_id" gorm:"not null;index"`
	Category   *ComplianceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name       string              `json:"name" gorm:"type:varchar(255);not null"`
	Status     FormStatus          `json:"status" gorm:"type:varchar(20);not null"`
	Elements   []FormElement       `json:"elements,omitempty" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ElementType is the closed set of form element kinds. SectionHeader and
// Description are layout-only: they render but never collect an answer.
type ElementType string

const (
	ElementTextInput     ElementType = "TextInput"
	ElementTextArea      ElementType = "TextArea"
	ElementNumber        ElementType = "Number"
	ElementEmail         ElementType = "Email"
	ElementDate          ElementType = "Date"
	ElementTime          ElementType = "Time"
	ElementDropdown      ElementType = "Dropdown"
	ElementRadioButton   ElementType = "RadioButton"
	ElementCheckbox      ElementType = "Checkbox"
	ElementFileUpload    ElementType = "FileUpload"
	ElementSectionHeader ElementType = "SectionHeader"
	ElementDescription   ElementType = "Description"
)

type elementKind struct {
	input      bool // collects an answer
	multiValue bool // may carry more than one answer value
	file       bool // answer is an uploaded artifact path
	choices    bool // uses the serialized Options list
}

var elementKinds = map[ElementType]elementKind{
	ElementTextInput:     {input: true},
	ElementTextArea:      {input: true},
	ElementNumber:        {input: true},
	ElementEmail:         {input: true},
	ElementDate:          {input: true},
	ElementTime:          {input: true},
	ElementDropdown:      {input: true, choices: true},
	ElementRadioButton:   {input: true, choices: true},
	ElementCheckbox:      {input: true, multiValue: true, choices: true},
	ElementFileUpload:    {input: true, file: true},
	ElementSectionHeader: {},
	ElementDescription:   {},
}

// IsValid reports whether t is a member of the closed element-type set.
func (t ElementType) IsValid() bool {
	_, ok := elementKinds[t]
	return ok
}

// IsInput reports whether elements of this type collect an answer.
// Unknown types report false on every predicate.
func (t ElementType) IsInput() bool { return elementKinds[t].input }

// IsMultiValue reports whether the element can carry several answer values
// (only Checkbox today).
func (t ElementType) IsMultiValue() bool { return elementKinds[t].multiValue }

// IsFile reports whether the answer is an uploaded artifact path.
func (t ElementType) IsFile() bool { return elementKinds[t].file }

// HasChoices reports whether the element renders from an Options list.
func (t ElementType) HasChoices() bool { return elementKinds[t].choices }

// FormElement is one entry in a form. Order defines the render and
// validation sequence; it is not guaranteed to be contiguous.
type FormElement struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	FormID      uint        `json:"form_id" gorm:"not null;index"`
	Label       string      `json:"label" gorm:"type:varchar(255);not null"`
	ElementType ElementType `json:"element_type" gorm:"type:varchar(30);not null"`
	Placeholder string      `json:"placeholder" gorm:"type:varchar(255)"`
	IsRequired  bool        `json:"is_required"`
	Options     string      `json:"options" gorm:"type:text"`
	Order       int         `json:"order" gorm:"column:sort_order;not null"`
}
