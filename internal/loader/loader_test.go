package loader

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/dispatch"
	"github.com/msto63/dcmd/foundation/command/registry"
	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

const greetings = `
commands:
  - name: twice
    description: Greets someone twice
    params:
      - name: who
        position: 1
      - flag: loud
        type: bool
    steps:
      - greet {{quote .who}} -times 2{{if .loud}} -loud{{end}}
  - name: span
    params:
      - name: from
        position: 1
        type: int
      - flag: -to
        type: int
        default: "3"
    steps:
      - echo start
      - range {{.from}} {{.to}}
`

const numbers = `
commands:
  - name: total
    params:
      - flag: -ids
        type: int[]
        mandatory: true
    steps:
      - sum -ids {{csv .ids}}
`

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return fs
}

func newRuntime(t *testing.T, fs afero.Fs) (*dispatch.Runtime, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	rt := dispatch.New(dispatch.Options{
		Out:    out,
		Fs:     fs,
		Logger: dlog.Discard(),
		Loader: New(fs, dlog.Discard()),
	})
	return rt, out
}

func TestIsManifestSource(t *testing.T) {
	assert.True(t, IsManifestSource("macros.yaml"))
	assert.True(t, IsManifestSource("dir/macros.YML"))
	assert.True(t, IsManifestSource("macros/**/*"))
	assert.False(t, IsManifestSource("core"))
	assert.False(t, IsManifestSource("macros.txt"))
}

func TestBundleLoader(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := New(fs, dlog.Discard())

	descs, err := l.LoadCommandTypes(context.Background(), "CORE")
	require.NoError(t, err)
	assert.NotEmpty(t, descs)

	_, err = l.LoadCommandTypes(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBundle)
	assert.True(t, derror.HasCode(err, derror.CodeNotFound))
}

func TestManifestLoader_Match(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/m/a.yaml":        greetings,
		"/m/sub/b.yml":     numbers,
		"/m/notes.txt":     "ignored",
		"/other/c.yaml":    numbers,
		"/m/sub/deep.yaml": numbers,
	})
	l := NewManifestLoader(fs, dlog.Discard())

	files, err := l.Match("/m/**/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"/m/a.yaml", "/m/sub/b.yml", "/m/sub/deep.yaml"}, files)

	files, err = l.Match("/m/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"/m/a.yaml"}, files)

	_, err = l.Match("/m/missing.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoManifests)
}

func TestManifestLoader_LoadFile(t *testing.T) {
	fs := newFs(t, map[string]string{"/m/a.yaml": greetings})
	l := NewManifestLoader(fs, dlog.Discard())

	m, err := l.LoadFile("/m/a.yaml")
	require.NoError(t, err)
	require.Len(t, m.Commands, 2)
	assert.Equal(t, "/m/a.yaml", m.SourceFile)
	assert.False(t, m.LoadedAt.IsZero())

	twice := m.Commands[0]
	assert.Equal(t, "-loud", twice.Params[1].Flag)
	assert.Equal(t, "loud", twice.Params[1].Name)
	assert.Equal(t, "string", twice.Params[0].Type)
	assert.Equal(t, "Macro of 2 steps", m.Commands[1].Description)
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"no name", "commands:\n  - steps: [greet x]\n", ErrMissingName},
		{"no steps", "commands:\n  - name: x\n", ErrMissingSteps},
		{"both kinds", "commands:\n  - name: x\n    params: [{name: a, position: 1, flag: -a}]\n    steps: [greet x]\n", ErrParamKind},
		{"no kind", "commands:\n  - name: x\n    params: [{name: a}]\n    steps: [greet x]\n", ErrParamKind},
		{"duplicate", "commands:\n  - name: x\n    params: [{name: a, position: 1}, {name: a, flag: -b}]\n    steps: [greet x]\n", ErrDuplicateParam},
		{"bad type", "commands:\n  - name: x\n    params: [{name: a, position: 1, type: map}]\n    steps: [greet x]\n", ErrUnsupportedType},
		{"bad template", "commands:\n  - name: x\n    steps: ['greet {{.a']\n", ErrInvalidTemplate},
		{"yaml", "commands: [", ErrInvalidYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFs(t, map[string]string{"/m/x.yaml": tt.content})
			_, err := NewManifestLoader(fs, dlog.Discard()).LoadFile("/m/x.yaml")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, derror.HasCode(err, derror.CodeConfig))
		})
	}
}

func TestManifestLoader_PatternSkipsBrokenFiles(t *testing.T) {
	fs := newFs(t, map[string]string{
		"/m/a.yaml":      greetings,
		"/m/broken.yaml": "commands: [",
	})
	l := NewManifestLoader(fs, dlog.Discard())

	descs, err := l.LoadCommandTypes(context.Background(), "/m/*.yaml")
	require.NoError(t, err)
	assert.Len(t, descs, 2)

	_, err = l.LoadCommandTypes(context.Background(), "/m/broken.yaml")
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestMacroExecution(t *testing.T) {
	fs := newFs(t, map[string]string{"/m/a.yaml": greetings, "/m/n.yaml": numbers})
	rt, out := newRuntime(t, fs)
	ctx := context.Background()

	_, err := rt.Load(ctx, "core", false)
	require.NoError(t, err)
	n, err := rt.Load(ctx, "/m/*.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res := rt.RunLine(ctx, `twice "Ann Lee" -loud`)
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, "HELLO, ANN LEE!\nHELLO, ANN LEE!\n", out.String())

	out.Reset()
	res = rt.RunLine(ctx, "span 1")
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, []int{1, 2, 3}, res.Value.Interface())
	assert.Equal(t, "start\n", out.String())

	res = rt.RunLine(ctx, "total -ids 1,2,3")
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, 6, res.Value.Interface())

	res = rt.RunLine(ctx, `obj r "total -ids 4,5"`)
	require.True(t, res.OK(), "%v", res.Err)
	v, ok := rt.Objects().Lookup("r")
	require.True(t, ok)
	assert.Equal(t, 9, v.Interface())
}

func TestMacroBindingAndFailures(t *testing.T) {
	broken := `
commands:
  - name: oops
    steps:
      - greet
  - name: loop
    steps:
      - loop
`
	fs := newFs(t, map[string]string{"/m/a.yaml": greetings, "/m/b.yaml": broken})
	rt, _ := newRuntime(t, fs)
	ctx := context.Background()

	_, err := rt.Load(ctx, "core", false)
	require.NoError(t, err)
	_, err = rt.Load(ctx, "/m/*.yaml", true)
	require.NoError(t, err)

	assert.Equal(t, command.BindingError, rt.RunLine(ctx, "twice").Outcome)
	assert.Equal(t, command.BindingError, rt.RunLine(ctx, "span x").Outcome)

	res := rt.RunLine(ctx, "oops")
	assert.Equal(t, command.ExecutionError, res.Outcome)
	var de *derror.Error
	require.ErrorAs(t, res.Err, &de)
	step, ok := de.Detail("step")
	require.True(t, ok)
	assert.Equal(t, 1, step)

	res = rt.RunLine(ctx, "loop")
	assert.Equal(t, command.ExecutionError, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrMacroDepth)
}

func TestMacroReplaceKeepsConsole(t *testing.T) {
	fs := newFs(t, map[string]string{"/m/n.yaml": numbers})
	rt, _ := newRuntime(t, fs)

	n, err := rt.Load(context.Background(), "/m/n.yaml", false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, rt.Registry().Has("total", registry.Loadable))
	assert.True(t, rt.Registry().Has("hist", registry.Console))
}

func TestMacroCancelled(t *testing.T) {
	fs := newFs(t, map[string]string{"/m/a.yaml": greetings})
	rt, _ := newRuntime(t, fs)

	_, err := rt.Load(context.Background(), "core", false)
	require.NoError(t, err)
	_, err = rt.Load(context.Background(), "/m/a.yaml", true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := rt.RunLine(ctx, "twice Ann")
	assert.Equal(t, command.ExecutionError, res.Outcome)
	assert.ErrorIs(t, res.Err, context.Canceled)
}
