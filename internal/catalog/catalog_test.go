package catalog

import (
	"growth_assessment/internal/model"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func likert(id string) model.Question {
	return model.Question{
		ID:      id,
		Title:   "title " + id,
		Type:    model.LikertScale,
		Options: []string{"Disagree", "Agree"},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		questions []model.Question
		wantErr   error
	}{
		{
			name:      "empty id",
			questions: []model.Question{{Type: model.FreeText}},
			wantErr:   ErrEmptyID,
		},
		{
			name:      "duplicate id",
			questions: []model.Question{likert("a"), likert("a")},
			wantErr:   ErrDuplicateID,
		},
		{
			name:      "unknown type",
			questions: []model.Question{{ID: "a", Type: "slider"}},
			wantErr:   ErrUnknownType,
		},
		{
			name:      "choice without options",
			questions: []model.Question{{ID: "a", Type: model.MultipleChoice}},
			wantErr:   ErrMissingOptions,
		},
		{
			name:      "text with options",
			questions: []model.Question{{ID: "a", Type: model.FreeText, Options: []string{"x"}}},
			wantErr:   ErrUnexpectedOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.questions)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCatalogOrderAndNavigation(t *testing.T) {
	c, err := New([]model.Question{likert("a"), likert("b"), likert("c")})
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a", "b", "c"}, c.IDs())
	assert.Equal(t, 1, c.IndexOf("b"))
	assert.Equal(t, -1, c.IndexOf("zz"))

	next, ok := c.Next("a")
	require.True(t, ok)
	assert.Equal(t, "b", next.ID)

	_, ok = c.Next("c")
	assert.False(t, ok, "last question has no successor")

	_, ok = c.Next("zz")
	assert.False(t, ok)
}

func TestCatalogIsImmutable(t *testing.T) {
	source := []model.Question{likert("a")}
	c, err := New(source)
	require.NoError(t, err)

	source[0].Title = "changed"
	source[0].Options[0] = "changed"

	qs := c.Questions()
	qs[0].Options[1] = "changed"

	q, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "title a", q.Title)
	assert.Equal(t, []string{"Disagree", "Agree"}, q.Options)
}

func TestLoadEmbeddedSections(t *testing.T) {
	r, err := Load()
	require.NoError(t, err)

	sections := r.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "service-offering", sections[0].Key)
	assert.Equal(t, "assembling-team", sections[1].Key)
	assert.Equal(t, "toolbox-success", sections[2].Key)

	team, ok := r.Section("assembling-team")
	require.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, team.AdvanceDelay)
	assert.Equal(t, []string{"team-structure"}, team.InitiallyExpanded())
	assert.Equal(t, "assemblingTeam", team.DataKey)

	offering, ok := r.Section("service-offering")
	require.True(t, ok)
	assert.Empty(t, offering.InitiallyExpanded())
	assert.Equal(t, 500*time.Millisecond, offering.AdvanceDelay)

	industry, ok := offering.Catalog.Lookup("industry")
	require.True(t, ok)
	assert.Equal(t, model.FreeText, industry.Type)
	assert.Empty(t, industry.Options)

	s, q, ok := r.FindQuestion("crm-implementation")
	require.True(t, ok)
	assert.Equal(t, "toolbox-success", s.Key)
	assert.Equal(t, model.LikertScale, q.Type)
	assert.Len(t, q.Options, 5)
}

func TestLoadFSRejectsCrossSectionDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"s/a.yaml": {Data: []byte("key: a\norder: 1\nquestions:\n  - id: q\n    title: Q\n    type: text\n")},
		"s/b.yaml": {Data: []byte("key: b\norder: 2\nquestions:\n  - id: q\n    title: Q\n    type: text\n")},
	}

	_, err := LoadFS(fsys, "s")
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadFSRejectsBadExpansion(t *testing.T) {
	fsys := fstest.MapFS{
		"s/a.yaml": {Data: []byte("key: a\ndefault_expansion: all\nquestions: []\n")},
	}

	_, err := LoadFS(fsys, "s")
	assert.ErrorIs(t, err, ErrUnknownExpansion)
}
