package answerkey

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pavelanni/randomizer/internal/i18n"
	"github.com/pavelanni/randomizer/internal/model"
	"github.com/pavelanni/randomizer/internal/shuffle"
)

func version() model.Exam {
	return model.Exam{
		Name: "version 1",
		Questions: []model.Question{
			{Text: "q1", Order: 1, Choices: &model.Choices{
				Items:    []model.Choice{{Text: "a"}, {Text: "b"}, {Text: "c"}},
				Correct:  model.NewCorrectChoice(2),
				Ordering: model.ChoiceOrdering{1, 2, 0},
			}},
			{Text: "q2", Order: 2},
			{Text: "q3", Order: 3, Choices: model.NewChoices([]string{"x", "y"})},
		},
		Ordering: []int{2, 0, 1},
	}
}

func TestLetter(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {52, "BA"}, {-1, "?"},
	}
	for _, tt := range tests {
		if got := Letter(tt.in); got != tt.want {
			t.Errorf("Letter(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuild(t *testing.T) {
	k := Build(version())
	if k.Name != "version 1" {
		t.Errorf("name = %q", k.Name)
	}
	want := []model.AnswerKeyEntry{
		{Position: 1, Order: 3, Answer: AnswerUnknown},
		{Position: 2, Order: 1, Answer: "C", Text: "a"},
		{Position: 3, Order: 2, Answer: AnswerOpen},
	}
	if len(k.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(k.Entries))
	}
	for i, w := range want {
		if k.Entries[i] != w {
			t.Errorf("entry %d = %+v, want %+v", i, k.Entries[i], w)
		}
	}
}

func TestBuildFollowsShuffle(t *testing.T) {
	c := model.NewChoices([]string{"w", "x", "y", "z"})
	c.Correct = model.NewCorrectChoice(3)
	master := model.Exam{Name: "master", Questions: []model.Question{{Text: "q", Order: 1, Choices: c}}}

	for _, v := range shuffle.NewSeeded(8).Versions(master, 10, nil) {
		k := Build(v)
		e := k.Entries[0]
		if e.Text != "z" {
			t.Errorf("%s: answer text = %q, want z", k.Name, e.Text)
		}
		pos := int(e.Answer[0] - 'A')
		if got := v.Questions[0].Choices.Displayed()[pos].Text; got != "z" {
			t.Errorf("%s: letter %s shows %q", k.Name, e.Answer, got)
		}
	}
}

func TestRender(t *testing.T) {
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx := i18n.WithLocalizer(context.Background(), i18n.NewLocalizer("en"))

	var buf bytes.Buffer
	if err := Render(ctx, &buf, []model.AnswerKey{Build(version()), {Name: "version 2"}}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := strings.Join([]string{
		"Answer key: version 1",
		"1. Question 3: ?",
		"2. Question 1: C",
		"3. Question 2: open-ended",
		"",
		"Answer key: version 2",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("Render() =\n%s\nwant\n%s", buf.String(), want)
	}
}
