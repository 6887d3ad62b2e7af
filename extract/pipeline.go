package extract

import (
	"go.uber.org/zap"

	"nyc_buildings/models"
)

// Accumulator is the value threaded through a pipeline run. A field, once
// set, is never overwritten.
type Accumulator struct {
	fields  []models.Field
	targets map[models.Field]bool
	found   map[models.Field]Candidate
}

// NewAccumulator creates an empty accumulator for the given target fields.
func NewAccumulator(fields []models.Field) *Accumulator {
	return &Accumulator{
		fields:  fields,
		targets: fieldSet(fields),
		found:   make(map[models.Field]Candidate, len(fields)),
	}
}

// Accept records c unless its field is unknown, already set, or c is empty.
// It reports whether c was kept.
func (a *Accumulator) Accept(c Candidate) bool {
	if c.Value == "" {
		return false
	}
	if _, ok := a.found[c.Field]; ok {
		return false
	}
	if !a.targets[c.Field] {
		return false
	}
	a.found[c.Field] = c
	return true
}

// Get returns the accepted candidate for f.
func (a *Accumulator) Get(f models.Field) (Candidate, bool) {
	c, ok := a.found[f]
	return c, ok
}

// Unset lists target fields with no value yet, in target order.
func (a *Accumulator) Unset() []models.Field {
	var out []models.Field
	for _, f := range a.fields {
		if _, ok := a.found[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Candidates lists accepted candidates in target field order.
func (a *Accumulator) Candidates() []Candidate {
	var out []Candidate
	for _, f := range a.fields {
		if c, ok := a.found[f]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (a *Accumulator) Overview() models.OverviewFields {
	var o models.OverviewFields
	for f, c := range a.found {
		o.Set(f, c.Value)
	}
	return o
}

func (a *Accumulator) Violations() models.ViolationFields {
	var v models.ViolationFields
	for f, c := range a.found {
		v.Set(f, c.Value)
	}
	return v
}

// Pipeline runs strategies in priority order over a view.
type Pipeline struct {
	name       string
	fields     []models.Field
	strategies []Strategy
	logger     *zap.Logger
}

// NewPipeline creates a pipeline targeting fields. Strategies earlier in the
// list take priority.
func NewPipeline(name string, fields []models.Field, strategies ...Strategy) *Pipeline {
	return &Pipeline{
		name:       name,
		fields:     fields,
		strategies: strategies,
		logger:     zap.NewNop(),
	}
}

// WithLogger enables per-candidate debug logs and a run summary.
func (p *Pipeline) WithLogger(l *zap.Logger) *Pipeline {
	if l != nil {
		p.logger = l
	}
	return p
}

// Run folds every strategy over a fresh accumulator. A nil view yields an
// empty result.
func (p *Pipeline) Run(v *View) *Accumulator {
	acc := NewAccumulator(p.fields)
	if v == nil {
		v = &View{}
	}

	for i, s := range p.strategies {
		unset := acc.Unset()
		if len(unset) == 0 {
			break
		}
		for _, c := range s.Attempt(v, unset) {
			c.Strategy = s.Name()
			c.Rank = i + 1
			if acc.Accept(c) {
				p.logger.Debug("extract: field found",
					zap.String("pipeline", p.name),
					zap.String("field", string(c.Field)),
					zap.String("value", c.Value),
					zap.String("strategy", c.Strategy),
					zap.Int("line", c.Line),
				)
			}
		}
	}

	p.summarize(acc)
	return acc
}

func (p *Pipeline) summarize(acc *Accumulator) {
	var found, missing []string
	for _, f := range p.fields {
		if _, ok := acc.Get(f); ok {
			found = append(found, string(f))
		} else {
			missing = append(missing, string(f))
		}
	}
	p.logger.Info("extract: summary",
		zap.String("pipeline", p.name),
		zap.Strings("found", found),
		zap.Strings("missing", missing),
	)
}
