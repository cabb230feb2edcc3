package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/msto63/dcmd/foundation/command"
	derror "github.com/msto63/dcmd/foundation/core/error"
)

// Show prints any stored object with its type
type Show struct {
	value any
	set   bool
}

func (s *Show) SetValue(v any) {
	s.value = v
	s.set = true
}

func (s *Show) Execute(_ context.Context, env *command.Env) error {
	if !s.set {
		return derror.New("nothing to show, use -v").WithCode(derror.CodeInvalidInput)
	}
	v := command.ValueOf(s.value)
	fmt.Fprintf(env.Out, "%s (%s)\n", v, v.TypeName())
	return nil
}

// Sleep waits for the given time and returns early when ctx is cancelled
type Sleep struct {
	command.Base
	millis int
}

func (s *Sleep) SetMillis(v int) { s.millis = v }

const pollInterval = 10 * time.Millisecond

func (s *Sleep) Execute(ctx context.Context, env *command.Env) error {
	if s.millis < 0 {
		return derror.Newf("millis must not be negative, got %d", s.millis).WithCode(derror.CodeInvalidInput)
	}
	deadline := time.Now().Add(time.Duration(s.millis) * time.Millisecond)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return derror.Wrap(ctx.Err(), "sleep interrupted").WithCode(derror.CodeExecution)
		case <-ticker.C:
		}
	}
	fmt.Fprintf(env.Out, "Slept %d ms\n", s.millis)
	return nil
}
