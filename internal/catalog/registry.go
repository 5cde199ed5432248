package catalog

import (
	"embed"
	"fmt"
	"growth_assessment/internal/model"
	"io/fs"
	"path"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sections/*.yaml
var sectionFiles embed.FS

// Expansion is the panel state a section starts in.
type Expansion string

const (
	ExpandFirst Expansion = "first"
	ExpandNone  Expansion = "none"
)

// Section is one thematic block of the assessment.
type Section struct {
	Key          string
	Title        string
	DataKey      string // key of the section inside assessmentData
	Order        int
	Expansion    Expansion
	AdvanceDelay time.Duration
	Catalog      *Catalog
}

// InitiallyExpanded returns the ids expanded when the section is first shown.
func (s *Section) InitiallyExpanded() []string {
	if s.Expansion == ExpandFirst && s.Catalog.Len() > 0 {
		return []string{s.Catalog.At(0).ID}
	}
	return nil
}

type sectionFile struct {
	Key              string           `yaml:"key"`
	Title            string           `yaml:"title"`
	DataKey          string           `yaml:"data_key"`
	Order            int              `yaml:"order"`
	DefaultExpansion string           `yaml:"default_expansion"`
	AdvanceDelay     string           `yaml:"advance_delay"`
	Questions        []model.Question `yaml:"questions"`
}

const defaultAdvanceDelay = 500 * time.Millisecond

func parseSection(data []byte) (*Section, error) {
	var f sectionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Key == "" {
		return nil, fmt.Errorf("section key is empty")
	}

	expansion := Expansion(f.DefaultExpansion)
	switch expansion {
	case "":
		expansion = ExpandNone
	case ExpandFirst, ExpandNone:
	default:
		return nil, fmt.Errorf("section %q: %w %q", f.Key, ErrUnknownExpansion, f.DefaultExpansion)
	}

	delay := defaultAdvanceDelay
	if f.AdvanceDelay != "" {
		d, err := time.ParseDuration(f.AdvanceDelay)
		if err != nil {
			return nil, fmt.Errorf("section %q: advance_delay: %w", f.Key, err)
		}
		delay = d
	}

	c, err := New(f.Questions)
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", f.Key, err)
	}

	dataKey := f.DataKey
	if dataKey == "" {
		dataKey = f.Key
	}

	return &Section{
		Key:          f.Key,
		Title:        f.Title,
		DataKey:      dataKey,
		Order:        f.Order,
		Expansion:    expansion,
		AdvanceDelay: delay,
		Catalog:      c,
	}, nil
}

// Registry is the ordered set of sections making up the whole assessment.
// Question ids are unique across all sections because answers of every
// section share one Answer Store.
type Registry struct {
	sections []*Section
	byKey    map[string]*Section
	byQID    map[string]*Section
}

// NewRegistry orders sections and checks key and question id uniqueness.
func NewRegistry(sections ...*Section) (*Registry, error) {
	r := &Registry{
		byKey: make(map[string]*Section, len(sections)),
		byQID: make(map[string]*Section),
	}

	sorted := append([]*Section(nil), sections...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	for _, s := range sorted {
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateSection, s.Key)
		}
		r.byKey[s.Key] = s
		for _, id := range s.Catalog.IDs() {
			if other, dup := r.byQID[id]; dup {
				return nil, fmt.Errorf("question %q in %q and %q: %w", id, other.Key, s.Key, ErrDuplicateID)
			}
			r.byQID[id] = s
		}
		r.sections = append(r.sections, s)
	}

	return r, nil
}

// Load builds the registry from the embedded section files.
func Load() (*Registry, error) {
	return LoadFS(sectionFiles, "sections")
}

// LoadFS builds a registry from every *.yaml file in dir.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	sections := make([]*Section, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		s, err := parseSection(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		sections = append(sections, s)
	}

	return NewRegistry(sections...)
}

// MustLoad is Load for program startup.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return r
}

// Sections returns the sections in assessment order.
func (r *Registry) Sections() []*Section {
	return append([]*Section(nil), r.sections...)
}

func (r *Registry) Section(key string) (*Section, bool) {
	s, ok := r.byKey[key]
	return s, ok
}

// FindQuestion locates a question id in any section.
func (r *Registry) FindQuestion(id string) (*Section, model.Question, bool) {
	s, ok := r.byQID[id]
	if !ok {
		return nil, model.Question{}, false
	}
	q, _ := s.Catalog.Lookup(id)
	return s, q, true
}
