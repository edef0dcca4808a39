package examreader

import (
	"encoding/json"
	"fmt"

	"github.com/pavelanni/randomizer/internal/model"
)

// FromJSON decodes a document in the interchange shape this tool emits. It is
// the only input format that can carry authored correct answers.
func FromJSON(data []byte) (model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, templateError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if len(doc.Questions) == 0 {
		return model.Document{}, templateError("No questions were found.")
	}
	for i := range doc.Questions {
		q := &doc.Questions[i]
		if q.Order == 0 {
			q.Order = i + 1
		}
		if q.Group == 0 {
			q.Group = 1
		}
		if q.Choices != nil && len(q.Choices.Items) == 0 {
			q.Choices = nil
		}
		if err := validateChoices(q.Order, q.Choices); err != nil {
			return model.Document{}, err
		}
	}
	return doc, nil
}

func validateChoices(order int, c *model.Choices) error {
	if c == nil {
		return nil
	}
	n := len(c.Items)
	if c.Correct != nil {
		if _, err := c.SetCorrect(int(*c.Correct)); err != nil {
			return templateError(fmt.Sprintf("question %d: %v", order, err))
		}
	}
	if c.Ordering == nil {
		return nil
	}
	if len(c.Ordering) != n {
		return templateError(fmt.Sprintf("question %d: ordering has %d entries for %d choices", order, len(c.Ordering), n))
	}
	seen := make([]bool, n)
	for _, idx := range c.Ordering {
		if idx < 0 || idx >= n || seen[idx] {
			return templateError(fmt.Sprintf("question %d: ordering is not a permutation", order))
		}
		seen[idx] = true
	}
	return nil
}
