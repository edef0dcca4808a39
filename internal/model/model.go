package model

// Choice is a single answer option. It carries no identity beyond its
// position in the containing Choices list.
type Choice struct {
	Text string `json:"text"`
}

// CorrectChoice is a zero-based index into Choices.Items. After shuffling it
// is the display position of the correct answer.
type CorrectChoice int

// ChoiceOrdering records a permutation: position i of the displayed list
// holds the item stored at index ordering[i].
type ChoiceOrdering []int

// Choices holds the options of a question.
//
// Items are never reordered once parsed; Ordering is the authoritative map a
// renderer applies to display them. Correct is nil when the source format does
// not say which option is right.
type Choices struct {
	Items    []Choice       `json:"items"`
	Correct  *CorrectChoice `json:"correct,omitempty"`
	Ordering ChoiceOrdering `json:"ordering,omitempty"`
}

// Question is one exam item.
type Question struct {
	Text    string   `json:"text"`
	Order   int      `json:"order"` // 1-based, document order
	Group   int      `json:"group"`
	Choices *Choices `json:"choices,omitempty"` // nil for open-ended questions
}

// Exam is a named list of questions. A nil Ordering means the exam is the
// unshuffled master.
type Exam struct {
	Name      string     `json:"name"`
	Preamble  *string    `json:"preamble,omitempty"`
	Questions []Question `json:"questions,omitempty"`
	Ordering  []int      `json:"ordering,omitempty"`
}

// ExamSetting is the metadata block embedded in a markup document.
type ExamSetting struct {
	University       string `json:"university"`
	Department       string `json:"department"`
	Term             string `json:"term"`
	CourseCode       string `json:"coursecode"`
	ExamName         string `json:"examname"`
	ExamDate         string `json:"examdate"`
	TimeAllowed      string `json:"timeallowed"`
	NumberOfVersions uint32 `json:"numberofvestions"`
	Groups           string `json:"groups"`
}

// Document is everything a reader extracts from one source file.
type Document struct {
	Preamble  *string      `json:"preamble,omitempty"`
	Questions []Question   `json:"questions"`
	Setting   *ExamSetting `json:"setting,omitempty"`
}

// NewCorrectChoice returns a pointer to i, for building Choices literals.
func NewCorrectChoice(i int) *CorrectChoice {
	c := CorrectChoice(i)
	return &c
}

// NewChoices builds an unshuffled Choices from option texts. It returns nil
// when texts is empty so that an empty option list and an absent one look the
// same to callers.
func NewChoices(texts []string) *Choices {
	if len(texts) == 0 {
		return nil
	}
	items := make([]Choice, len(texts))
	for i, t := range texts {
		items[i] = Choice{Text: t}
	}
	return &Choices{Items: items}
}

// NewExam assembles an unshuffled exam from a parsed document.
func NewExam(name string, doc Document) Exam {
	return Exam{
		Name:      name,
		Preamble:  doc.Preamble,
		Questions: doc.Questions,
	}
}
