// Package catalog holds the compiled-in question catalogs of every assessment section.
//
// Catalogs are built once at startup from embedded YAML and never change afterwards;
// every accessor hands out copies so callers cannot mutate shared state.
package catalog

import (
	"fmt"
	"growth_assessment/internal/model"
)

// Catalog is an immutable ordered sequence of questions. Order defines both
// display order and auto-advance traversal order.
type Catalog struct {
	questions []model.Question
	index     map[string]int
}

// New validates questions and returns a catalog owning a private copy of them.
func New(questions []model.Question) (*Catalog, error) {
	c := &Catalog{
		questions: make([]model.Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}

	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: %w", i, ErrEmptyID)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("question %q: %w", q.ID, ErrDuplicateID)
		}
		if !q.Type.Valid() {
			return nil, fmt.Errorf("question %q: %w %q", q.ID, ErrUnknownType, q.Type)
		}
		if q.Type.HasOptions() && len(q.Options) == 0 {
			return nil, fmt.Errorf("question %q: %w", q.ID, ErrMissingOptions)
		}
		if q.Type == model.FreeText && len(q.Options) > 0 {
			return nil, fmt.Errorf("question %q: %w", q.ID, ErrUnexpectedOptions)
		}

		c.index[q.ID] = len(c.questions)
		c.questions = append(c.questions, clone(q))
	}

	return c, nil
}

func clone(q model.Question) model.Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

func (c *Catalog) Len() int {
	return len(c.questions)
}

// At returns the question at position i. It panics when i is out of range.
func (c *Catalog) At(i int) model.Question {
	return clone(c.questions[i])
}

// Questions returns a copy of the questions in catalog order.
func (c *Catalog) Questions() []model.Question {
	out := make([]model.Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = clone(q)
	}
	return out
}

// IDs returns the question ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.questions))
	for i, q := range c.questions {
		ids[i] = q.ID
	}
	return ids
}

func (c *Catalog) Lookup(id string) (model.Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Question{}, false
	}
	return clone(c.questions[i]), true
}

// IndexOf returns the position of id, or -1 if the catalog does not contain it.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Next returns the question following id. ok is false for the last question
// and for ids outside the catalog.
func (c *Catalog) Next(id string) (model.Question, bool) {
	i := c.IndexOf(id)
	if i < 0 || i+1 >= len(c.questions) {
		return model.Question{}, false
	}
	return clone(c.questions[i+1]), true
}
