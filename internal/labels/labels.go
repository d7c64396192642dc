// Package labels anonymizes model identities behind opaque labels
// ("Response A", "Response B", ...) so raters cannot play favorites. A map
// is scoped to a single anonymization boundary inside one run and must not
// leak outside the emitting runner until the winner is declared.
package labels

import (
	"fmt"
	"sort"

	"github.com/Dicklesworthstone/quorum/internal/aggregate"
)

// Map is a bijection from opaque label to model id.
type Map struct {
	labelToModel map[string]string
	modelToLabel map[string]string
	ordered      []string // labels in assignment order
}

// New assigns labels to models in the given order: the first model becomes
// "Response A", the second "Response B", and so on.
func New(models []string) *Map {
	return build(models)
}

// NewShuffled assigns labels over a uniform random permutation of models
// (Fisher-Yates). Used for second-round maps to defeat position bias.
func NewShuffled(models []string) *Map {
	return build(aggregate.Shuffle(models))
}

func build(models []string) *Map {
	m := &Map{
		labelToModel: make(map[string]string, len(models)),
		modelToLabel: make(map[string]string, len(models)),
	}
	for i, model := range models {
		label := Label(i)
		m.labelToModel[label] = model
		m.modelToLabel[model] = label
		m.ordered = append(m.ordered, label)
	}
	return m
}

// Label returns the opaque label for position i: "Response A" through
// "Response Z", then "Response AA" and onward.
func Label(i int) string {
	return "Response " + letters(i)
}

func letters(i int) string {
	s := ""
	for {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
		if i < 0 {
			return s
		}
	}
}

// Model resolves a label to its model id.
func (m *Map) Model(label string) (string, bool) {
	model, ok := m.labelToModel[label]
	return model, ok
}

// LabelFor resolves a model id to its label.
func (m *Map) LabelFor(model string) (string, bool) {
	label, ok := m.modelToLabel[model]
	return label, ok
}

// Labels returns the labels in assignment order.
func (m *Map) Labels() []string {
	out := make([]string, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// Models returns the model ids in label order.
func (m *Map) Models() []string {
	out := make([]string, 0, len(m.ordered))
	for _, label := range m.ordered {
		out = append(out, m.labelToModel[label])
	}
	return out
}

// Len returns the number of label/model pairs.
func (m *Map) Len() int {
	return len(m.ordered)
}

// Has reports whether label exists in the map.
func (m *Map) Has(label string) bool {
	_, ok := m.labelToModel[label]
	return ok
}

// Validate checks the bijection invariant.
func (m *Map) Validate() error {
	if len(m.labelToModel) != len(m.modelToLabel) {
		return fmt.Errorf("label map is not a bijection: %d labels, %d models",
			len(m.labelToModel), len(m.modelToLabel))
	}
	for label, model := range m.labelToModel {
		if m.modelToLabel[model] != label {
			return fmt.Errorf("label %q does not round-trip through model %q", label, model)
		}
	}
	return nil
}

// SortedLabels returns labels sorted alphabetically, for deterministic
// tie-breaking.
func (m *Map) SortedLabels() []string {
	out := m.Labels()
	sort.Strings(out)
	return out
}
