package commands

import (
	"context"
	"fmt"

	"github.com/msto63/dcmd/foundation/command"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

// MaxRangeValues caps the number of values one range may produce
const MaxRangeValues = 1 << 20

// Range produces from, from+step, ... up to and including to
type Range struct {
	from, to, step int
	values         []int
}

func (r *Range) SetFrom(v int) { r.from = v }
func (r *Range) SetTo(v int)   { r.to = v }
func (r *Range) SetStep(v int) { r.step = v }
func (r *Range) Result() any   { return r.values }

func (r *Range) Execute(context.Context, *command.Env) error {
	if r.step <= 0 {
		return derror.Newf("-step must be positive, got %d", r.step).WithCode(derror.CodeInvalidInput)
	}
	r.values = []int{}
	if r.to < r.from {
		return nil
	}
	// the span is computed unsigned so from and to may be any ints
	steps := (uint64(r.to) - uint64(r.from)) / uint64(r.step)
	if steps >= MaxRangeValues {
		return derror.Newf("range exceeds the limit of %d values", MaxRangeValues).
			WithCode(derror.CodeInvalidInput)
	}
	count := steps + 1
	r.values = make([]int, 0, count)
	for i, v := uint64(0), r.from; i < count; i, v = i+1, v+r.step {
		r.values = append(r.values, v)
	}
	return nil
}

// Sum adds the integers given with -ids and those stored in the -v variable
type Sum struct {
	ids    []int
	values []int
	total  int
}

func (s *Sum) SetIDs(v []int)    { s.ids = v }
func (s *Sum) SetValues(v []int) { s.values = v }
func (s *Sum) Result() any       { return s.total }

func (s *Sum) Execute(context.Context, *command.Env) error {
	if s.ids == nil && s.values == nil {
		return derror.New("nothing to sum, use -ids or -v").WithCode(derror.CodeInvalidInput)
	}
	for _, n := range s.ids {
		s.total += n
	}
	for _, n := range s.values {
		s.total += n
	}
	return nil
}

// Summary is produced by stats
type Summary struct {
	Count int
	Min   int
	Max   int
	Mean  float64
}

func (s *Summary) String() string {
	return fmt.Sprintf("count=%d min=%d max=%d mean=%.2f", s.Count, s.Min, s.Max, s.Mean)
}

// Stats summarizes the integers of a stored variable
type Stats struct {
	values  []int
	summary *Summary
}

func (s *Stats) SetValues(v []int) { s.values = v }
func (s *Stats) Result() any       { return s.summary }

func (s *Stats) Execute(context.Context, *command.Env) error {
	if len(s.values) == 0 {
		return derror.New("no values, use -v with a non-empty variable").WithCode(derror.CodeInvalidInput)
	}
	sum := &Summary{Count: len(s.values), Min: s.values[0], Max: s.values[0]}
	total := 0
	for _, v := range s.values {
		sum.Min = min(sum.Min, v)
		sum.Max = max(sum.Max, v)
		total += v
	}
	sum.Mean = float64(total) / float64(len(s.values))
	s.summary = sum
	return nil
}
