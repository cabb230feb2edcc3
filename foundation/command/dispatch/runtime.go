// File: runtime.go
// Title: Dispatch Runtime
// Description: Resolves command names in the loadable and console
//              namespaces, invokes them and coordinates nested dispatch,
//              the object store and the history.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-10
// Modified: 2025-03-14
//
// Change History:
// - 2025-03-10 v0.1.0: Initial implementation
// - 2025-03-12 v0.1.1: Pluggable history, session ids
// - 2025-03-14 v0.1.2: Loader integration

package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/registry"
	"github.com/msto63/dcmd/foundation/command/tokenize"
	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// Options configures a Runtime. Zero values select in-memory defaults and
// the process's standard streams.
type Options struct {
	Registry  *registry.Registry
	Objects   *ObjectStore
	History   History
	Loader    CommandLoader
	Fs        afero.Fs
	Out       io.Writer
	In        io.Reader
	Logger    *dlog.Logger
	SessionID string

	// NoBuiltins leaves the console namespace empty
	NoBuiltins bool
}

// Runtime is one dispatch session
type Runtime struct {
	registry *registry.Registry
	objects  *ObjectStore
	history  History
	loader   CommandLoader
	fs       afero.Fs
	out      io.Writer
	in       *bufio.Reader
	logger   *dlog.Logger
	session  string
}

// New builds a runtime and registers the console commands
func New(opts Options) *Runtime {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = dlog.GetDefault()
	}
	logger := opts.Logger.WithSession(opts.SessionID)

	if opts.Registry == nil {
		opts.Registry = registry.New(registry.Options{Logger: logger})
	}
	if opts.Objects == nil {
		opts.Objects = NewObjectStore(logger)
	}
	if opts.History == nil {
		opts.History = NewMemoryHistory()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	in, ok := opts.In.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(opts.In)
	}

	r := &Runtime{
		registry: opts.Registry,
		objects:  opts.Objects,
		history:  opts.History,
		loader:   opts.Loader,
		fs:       opts.Fs,
		out:      opts.Out,
		in:       in,
		logger:   logger.WithField("component", "dispatch"),
		session:  opts.SessionID,
	}
	if !opts.NoBuiltins {
		r.registry.RegisterAll(r.consoleCommands(), registry.Console)
	}
	return r
}

// With returns a view of the runtime that shares registry, objects, history
// and loader but writes to out and reads from in. A nil stream keeps the
// current one.
func (r *Runtime) With(out io.Writer, in io.Reader) *Runtime {
	view := *r
	if out != nil {
		view.out = out
	}
	if in != nil {
		if br, ok := in.(*bufio.Reader); ok {
			view.in = br
		} else {
			view.in = bufio.NewReader(in)
		}
	}
	return &view
}

func (r *Runtime) Registry() *registry.Registry { return r.registry }
func (r *Runtime) Objects() *ObjectStore        { return r.objects }
func (r *Runtime) History() History             { return r.history }
func (r *Runtime) Fs() afero.Fs                 { return r.fs }
func (r *Runtime) Out() io.Writer               { return r.out }
func (r *Runtime) In() *bufio.Reader            { return r.in }
func (r *Runtime) Logger() *dlog.Logger         { return r.logger }
func (r *Runtime) SessionID() string            { return r.session }

// Run resolves tokens[0] in the console namespace when console is set and
// in the loadable namespace otherwise, then invokes it with tokens[1:]
func (r *Runtime) Run(ctx context.Context, tokens []string, console bool) command.Result {
	if len(tokens) == 0 {
		return command.NotFoundResult("")
	}
	ns := registry.Loadable
	if console {
		ns = registry.Console
	}
	decl, ok := r.registry.Lookup(tokens[0], ns)
	if !ok {
		res := command.NotFoundResult(tokens[0])
		r.logger.LogError(res.Err)
		return res
	}

	res := command.Invoke(ctx, decl, tokens[1:], r.env())
	if !console {
		r.logger.Info("Command finished", dlog.Fields{
			"command":     decl.Name(),
			"outcome":     res.Outcome.String(),
			"duration_ms": res.Elapsed.Milliseconds(),
		})
	}
	return res
}

// Dispatch runs tokens as a console command when tokens[0] names one and as
// a loadable command otherwise
func (r *Runtime) Dispatch(ctx context.Context, tokens []string) command.Result {
	if len(tokens) == 0 {
		return command.NotFoundResult("")
	}
	return r.Run(ctx, tokens, r.registry.Has(tokens[0], registry.Console))
}

// RunLine tokenizes line and dispatches it. A line that cannot be
// tokenized is a binding error.
func (r *Runtime) RunLine(ctx context.Context, line string) command.Result {
	tokens, err := tokenize.Split(line)
	if err != nil {
		return command.Result{Outcome: command.BindingError, Err: err}
	}
	return r.Dispatch(ctx, tokens)
}

// Remember appends a dispatched line to the history. Lines whose command
// was not found and history meta-commands are skipped.
func (r *Runtime) Remember(ctx context.Context, line string, tokens []string, res command.Result) error {
	if len(tokens) == 0 || res.Outcome == command.NotFound {
		return nil
	}
	if strings.EqualFold(tokens[0], histName) {
		return nil
	}
	line = strings.TrimSpace(line)
	if line == "" {
		line = tokenize.Join(tokens)
	}
	err := r.history.Append(ctx, Entry{
		ID:      uuid.NewString(),
		Line:    line,
		Args:    tokens,
		At:      time.Now(),
		Session: r.session,
	})
	if err != nil {
		return derror.Wrap(err, "record history").WithCode(derror.CodeIO)
	}
	return nil
}

// Help renders the declarations of name. Loadable commands take precedence
// over console commands of the same name unless console is set.
func (r *Runtime) Help(name string, console bool) (string, error) {
	first, second := registry.Loadable, registry.Console
	if console {
		first, second = second, first
	}
	if decl, ok := r.registry.Lookup(name, first); ok {
		return decl.Help(), nil
	}
	if decl, ok := r.registry.Lookup(name, second); ok {
		return decl.Help(), nil
	}
	return "", command.NotFoundResult(name).Err
}

// List renders one line per command of ns with its description
func (r *Runtime) List(ns registry.Namespace) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, decl := range r.registry.Commands(ns) {
		fmt.Fprintf(tw, "  %s\t%s\n", decl.Name(), decl.Description())
	}
	tw.Flush()
	return b.String()
}

// Load resolves source through the configured loader. The loadable
// namespace is replaced unless merge is set.
func (r *Runtime) Load(ctx context.Context, source string, merge bool) (int, error) {
	if r.loader == nil {
		return 0, derror.New("no command loader configured").WithCode(derror.CodeConfig)
	}
	descs, err := r.loader.LoadCommandTypes(ctx, source)
	if err != nil {
		return 0, derror.Wrapf(err, "load %s", source).WithOperation("load")
	}

	defs := definitions(descs)
	var n int
	var errs []error
	if merge {
		n, errs = r.registry.RegisterAll(defs, registry.Loadable)
	} else {
		n, errs = r.registry.Replace(defs, registry.Loadable)
	}
	r.logger.Info("Commands loaded", dlog.Fields{
		"source":   source,
		"merge":    merge,
		"loaded":   n,
		"excluded": len(errs),
	})
	return n, nil
}

func (r *Runtime) env() *command.Env {
	return &command.Env{
		Out:     r.out,
		In:      r.in,
		Logger:  r.logger,
		Objects: r.objects,
		Runner:  r,
		Session: r.session,
	}
}
