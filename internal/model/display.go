package model

import "fmt"

// Clone returns a deep copy of c.
func (c *Choices) Clone() *Choices {
	if c == nil {
		return nil
	}
	out := &Choices{Items: append([]Choice(nil), c.Items...)}
	if c.Correct != nil {
		out.Correct = NewCorrectChoice(int(*c.Correct))
	}
	if c.Ordering != nil {
		out.Ordering = append(ChoiceOrdering(nil), c.Ordering...)
	}
	return out
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	q.Choices = q.Choices.Clone()
	return q
}

// SetCorrect returns a copy of c whose correct choice is display position pos.
func (c *Choices) SetCorrect(pos int) (*Choices, error) {
	if pos < 0 || pos >= c.Len() {
		return nil, fmt.Errorf("correct choice %d out of range for %d choices", pos, c.Len())
	}
	out := c.Clone()
	out.Correct = NewCorrectChoice(pos)
	return out, nil
}

// Len returns the number of options.
func (c *Choices) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// StorageIndex maps a display position to the index of the item in Items.
// Without an ordering the two are the same.
func (c *Choices) StorageIndex(pos int) int {
	if c.Ordering == nil {
		return pos
	}
	if pos < 0 || pos >= len(c.Ordering) {
		return pos
	}
	return c.Ordering[pos]
}

// Displayed returns the options in the order a renderer should show them.
func (c *Choices) Displayed() []Choice {
	if c == nil {
		return nil
	}
	out := make([]Choice, len(c.Items))
	for pos := range c.Items {
		out[pos] = c.Items[c.StorageIndex(pos)]
	}
	return out
}

// CorrectText returns the text of the correct option and whether one is
// known.
func (c *Choices) CorrectText() (string, bool) {
	if c == nil || c.Correct == nil {
		return "", false
	}
	pos := int(*c.Correct)
	if pos < 0 || pos >= len(c.Items) {
		return "", false
	}
	return c.Items[c.StorageIndex(pos)].Text, true
}

// IsShuffled reports whether e is a shuffled version rather than a master.
func (e Exam) IsShuffled() bool {
	return e.Ordering != nil
}

// Ordered returns the questions in display order.
func (e Exam) Ordered() []Question {
	if e.Ordering == nil {
		return e.Questions
	}
	out := make([]Question, 0, len(e.Ordering))
	for _, idx := range e.Ordering {
		if idx >= 0 && idx < len(e.Questions) {
			out = append(out, e.Questions[idx])
		}
	}
	return out
}
