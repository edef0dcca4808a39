// Package shuffle produces randomized versions of an exam while keeping the
// answer key valid.
package shuffle

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/pavelanni/randomizer/internal/model"
)

// Shuffler draws permutations from an injected generator. It is safe for
// concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Shuffler backed by src.
func New(src rand.Source) *Shuffler {
	return &Shuffler{rng: rand.New(src)}
}

// NewSeeded returns a deterministic Shuffler.
func NewSeeded(seed uint64) *Shuffler {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandom returns a Shuffler seeded from the runtime's random source.
func NewRandom() *Shuffler {
	return New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// perm returns a uniformly random permutation of [0, n).
func (s *Shuffler) perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}

// ShuffleChoices returns a copy of q whose choices carry a fresh ordering and the
// relocated correct index. Items are left in storage order. A question
// without choices is returned unchanged.
func (s *Shuffler) ShuffleChoices(q model.Question) model.Question {
	if q.Choices == nil {
		return q
	}
	out := q.Clone()
	c := out.Choices
	ordering := s.perm(len(c.Items))

	if c.Correct != nil {
		// Map the current display position back to storage so reshuffling a
		// version keeps pointing at the same answer.
		stored := c.StorageIndex(int(*c.Correct))
		pos := slices.Index(ordering, stored)
		if pos < 0 {
			pos = int(*c.Correct)
		}
		c.Correct = model.NewCorrectChoice(pos)
	}
	c.Ordering = ordering
	return out
}

// ShuffleExam returns a new version of e named name, or e.Name when name is empty.
// Every question's choices are shuffled independently and the question order
// is drawn afresh; a previous ordering on e is not composed with the new one.
func (s *Shuffler) ShuffleExam(e model.Exam, name string) model.Exam {
	if name == "" {
		name = e.Name
	}
	out := model.Exam{Name: name, Preamble: e.Preamble}
	if len(e.Questions) == 0 {
		return out
	}
	out.Questions = make([]model.Question, len(e.Questions))
	for i, q := range e.Questions {
		out.Questions[i] = s.ShuffleChoices(q)
	}
	out.Ordering = s.perm(len(e.Questions))
	return out
}

// Versions shuffles master n times. When n <= 0 the count comes from the
// setting's declared number of versions, and defaults to 1.
func (s *Shuffler) Versions(master model.Exam, n int, setting *model.ExamSetting) []model.Exam {
	if n <= 0 && setting != nil {
		n = int(setting.NumberOfVersions)
	}
	if n <= 0 {
		n = 1
	}
	versions := make([]model.Exam, n)
	for i := range versions {
		versions[i] = s.ShuffleExam(master, VersionName(i+1))
	}
	return versions
}

// VersionName is the default name of the i-th (1-based) version.
func VersionName(i int) string {
	return fmt.Sprintf("version %d", i)
}
