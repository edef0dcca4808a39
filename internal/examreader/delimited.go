package examreader

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pavelanni/randomizer/internal/model"
)

// FromCSV parses comma separated records: group, question text, then any
// number of choices. There is no header row.
func FromCSV(content string) ([]model.Question, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1

	return questionsFromRecords(func() ([]string, error) {
		rec, err := r.Read()
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, errSkipRecord{perr}
		}
		return rec, err
	})
}

// FromTSV parses tab separated records with the FromCSV column layout. Each
// line is one record and quotes have no special meaning.
func FromTSV(content string) ([]model.Question, error) {
	lines := strings.Split(content, "\n")
	i := 0
	return questionsFromRecords(func() ([]string, error) {
		if i >= len(lines) {
			return nil, io.EOF
		}
		line := strings.TrimSuffix(lines[i], "\r")
		i++
		return strings.Split(line, "\t"), nil
	})
}

// errSkipRecord marks a row that could not be read. The row is dropped and
// reading continues.
type errSkipRecord struct{ err error }

func (e errSkipRecord) Error() string { return e.err.Error() }

// questionsFromRecords turns rows into questions. next returns io.EOF when no
// rows remain. Rows that fail to read or have no text are skipped without
// consuming an order number.
func questionsFromRecords(next func() ([]string, error)) ([]model.Question, error) {
	var qs []model.Question
	order := 0
	for {
		rec, err := next()
		if err == io.EOF {
			break
		}
		var skip errSkipRecord
		if errors.As(err, &skip) {
			slog.Warn("skipping malformed row", "error", skip.err)
			continue
		}
		if err != nil {
			return nil, ioError(err)
		}

		q, ok := questionFromRecord(rec)
		if !ok {
			continue
		}
		order++
		q.Order = order
		qs = append(qs, q)
	}

	if len(qs) == 0 {
		return nil, templateError("no questions were found")
	}
	return qs, nil
}

func questionFromRecord(rec []string) (model.Question, bool) {
	if len(rec) < 2 {
		return model.Question{}, false
	}
	text := strings.TrimSpace(rec[1])
	if text == "" {
		return model.Question{}, false
	}

	group := 1
	if g, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 32); err == nil {
		group = int(g)
	}

	var choices []string
	for _, c := range rec[2:] {
		if c = strings.TrimSpace(c); c != "" {
			choices = append(choices, c)
		}
	}

	return model.Question{
		Text:    text,
		Group:   group,
		Choices: model.NewChoices(choices),
	}, true
}
