package examreader

import (
	"strings"

	"github.com/pavelanni/randomizer/internal/model"
)

// Markup tags. Each is matched verbatim and the first occurrence wins, so a
// tag repeated inside a question or option body truncates it there.
const (
	TagDocStart      = `\begin{document}`
	TagDocEnd        = `\end{document}`
	TagQuestionStart = `\begin{question}`
	TagQuestionEnd   = `\end{question}`
	TagOptionStart   = `\begin{choice}`
	TagOptionEnd     = `\end{choice}`
	TagPreambleStart = `%{preamble}`
	TagPreambleEnd   = `%{/preamble}`
	TagSettingStart  = `%{setting}`
	TagSettingEnd    = `%{/setting}`
)

// FromMarkup parses a markup document. The preamble and the setting block are
// extracted independently of the question body, so they are filled in even
// when the returned error reports a body defect.
func FromMarkup(content string) (model.Document, error) {
	doc := model.Document{
		Preamble: preambleFromMarkup(content),
		Setting:  settingFromMarkup(content),
	}
	qs, err := questionsFromMarkup(content)
	if err != nil {
		return doc, err
	}
	doc.Questions = qs
	return doc, nil
}

// between returns the text after the first start tag and before the first
// end tag that follows it.
func between(content, start, end string) (string, bool) {
	s := strings.Index(content, start)
	if s < 0 {
		return "", false
	}
	rest := content[s+len(start):]
	e := strings.Index(rest, end)
	if e < 0 {
		return "", false
	}
	return rest[:e], true
}

func preambleFromMarkup(content string) *string {
	text, ok := between(content, TagPreambleStart, TagPreambleEnd)
	if !ok {
		return nil
	}
	text = strings.TrimSpace(text)
	return &text
}

func settingFromMarkup(content string) *model.ExamSetting {
	block, ok := between(content, TagSettingStart, TagSettingEnd)
	if !ok {
		return nil
	}
	s := ParseSetting(block)
	return &s
}

func questionsFromMarkup(content string) ([]model.Question, error) {
	s := strings.Index(content, TagDocStart)
	if s < 0 {
		return nil, templateError(`The document must have \begin{document} tag`)
	}
	body := content[s+len(TagDocStart):]
	e := strings.Index(body, TagDocEnd)
	if e < 0 {
		return nil, templateError(`The document must have \end{document} tag`)
	}
	body = body[:e]

	var qs []model.Question
	order := 1
	for _, segment := range strings.Split(body, TagQuestionStart) {
		segment = strings.TrimSpace(segment)
		text := upTo(segment, TagQuestionEnd)
		if text == "" {
			continue
		}
		qs = append(qs, model.Question{
			Text:    text,
			Order:   order,
			Group:   1,
			Choices: optionsFromMarkup(segment),
		})
		order++
	}

	if len(qs) == 0 {
		return nil, templateError("No questions were found.")
	}
	return qs, nil
}

// upTo returns the trimmed text before tag, or "" when tag is absent.
func upTo(s, tag string) string {
	i := strings.Index(s, tag)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[:i])
}

func optionsFromMarkup(segment string) *model.Choices {
	var texts []string
	for _, piece := range strings.Split(segment, TagOptionStart) {
		if text := upTo(piece, TagOptionEnd); text != "" {
			texts = append(texts, text)
		}
	}
	return model.NewChoices(texts)
}
