// Package answerkey derives answer keys from shuffled exam versions.
package answerkey

import (
	"context"
	"fmt"
	"io"

	"github.com/pavelanni/randomizer/internal/i18n"
	"github.com/pavelanni/randomizer/internal/model"
)

// Answer markers for questions whose answer cannot be given as a letter.
const (
	AnswerUnknown = "?"
	AnswerOpen    = "-"
)

// Build lists the correct letter of every question in display order.
func Build(e model.Exam) model.AnswerKey {
	k := model.AnswerKey{Name: e.Name}
	for i, q := range e.Ordered() {
		entry := model.AnswerKeyEntry{Position: i + 1, Order: q.Order}
		switch {
		case q.Choices == nil:
			entry.Answer = AnswerOpen
		case q.Choices.Correct == nil:
			entry.Answer = AnswerUnknown
		default:
			text, ok := q.Choices.CorrectText()
			if !ok {
				entry.Answer = AnswerUnknown
				break
			}
			entry.Answer = Letter(int(*q.Choices.Correct))
			entry.Text = text
		}
		k.Entries = append(k.Entries, entry)
	}
	return k
}

// BuildAll builds a key for every version.
func BuildAll(versions []model.Exam) []model.AnswerKey {
	keys := make([]model.AnswerKey, len(versions))
	for i, v := range versions {
		keys[i] = Build(v)
	}
	return keys
}

// Letter converts a zero-based index to A, B, ..., Z, AA, AB, ...
func Letter(i int) string {
	if i < 0 {
		return AnswerUnknown
	}
	var out []byte
	for i >= 0 {
		out = append([]byte{byte('A' + i%26)}, out...)
		i = i/26 - 1
	}
	return string(out)
}

// Render writes keys as localized text using the localizer in ctx.
func Render(ctx context.Context, w io.Writer, keys []model.AnswerKey) error {
	for ki, k := range keys {
		if ki > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, i18n.Td(ctx, "AnswerKeyTitle", map[string]any{"Name": k.Name})); err != nil {
			return err
		}
		for _, e := range k.Entries {
			answer := e.Answer
			switch answer {
			case AnswerUnknown:
				answer = i18n.T(ctx, "AnswerUnknown")
			case AnswerOpen:
				answer = i18n.T(ctx, "AnswerOpen")
			}
			line := i18n.Td(ctx, "AnswerKeyLine", map[string]any{
				"Position": e.Position,
				"Order":    e.Order,
				"Answer":   answer,
			})
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
