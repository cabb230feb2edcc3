// ============================================================================
// dcmd - Declarative Command Dispatcher
// ============================================================================
//
// Package:     loader
// Description: Command loaders for compiled bundles and YAML manifests
// Author:      Mike Stoffels
// Created:     2025-03-11
// License:     MIT
// ============================================================================

package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/msto63/dcmd/foundation/command"
	"github.com/msto63/dcmd/foundation/command/dispatch"
	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
	"github.com/msto63/dcmd/internal/commands"
	"github.com/msto63/dcmd/pkg/core/logging"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader routes manifest sources (.yaml, .yml or glob patterns) to the
// manifest loader and everything else to the compiled bundles
type Loader struct {
	bundles   *BundleLoader
	manifests *ManifestLoader
}

// New creates a loader over the built-in bundles and fs
func New(fs afero.Fs, logger *dlog.Logger) *Loader {
	return &Loader{
		bundles:   NewBundleLoader(commands.Bundles()),
		manifests: NewManifestLoader(fs, logger),
	}
}

// LoadCommandTypes implements dispatch.CommandLoader
func (l *Loader) LoadCommandTypes(ctx context.Context, source string) ([]dispatch.Descriptor, error) {
	if IsManifestSource(source) {
		return l.manifests.LoadCommandTypes(ctx, source)
	}
	return l.bundles.LoadCommandTypes(ctx, source)
}

// IsManifestSource reports whether source names YAML manifests
func IsManifestSource(source string) bool {
	return isManifestFile(source) || strings.ContainsAny(source, "*?[{")
}

func isManifestFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// BundleLoader resolves bundle names to compiled command definitions
type BundleLoader struct {
	bundles map[string]func() []command.Definition
}

// NewBundleLoader creates a loader over the given bundles
func NewBundleLoader(bundles map[string]func() []command.Definition) *BundleLoader {
	normalized := make(map[string]func() []command.Definition, len(bundles))
	for name, fn := range bundles {
		normalized[strings.ToLower(name)] = fn
	}
	return &BundleLoader{bundles: normalized}
}

// Names returns the bundle names in sorted order
func (b *BundleLoader) Names() []string {
	names := make([]string, 0, len(b.bundles))
	for name := range b.bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadCommandTypes returns the commands of the named bundle
func (b *BundleLoader) LoadCommandTypes(_ context.Context, source string) ([]dispatch.Descriptor, error) {
	name := strings.ToLower(strings.TrimSpace(source))
	fn, ok := b.bundles[name]
	if !ok {
		return nil, derror.Wrap(ErrUnknownBundle, name).
			WithCode(derror.CodeNotFound).
			WithDetail("available", strings.Join(b.Names(), ","))
	}

	defs := fn()
	descs := make([]dispatch.Descriptor, len(defs))
	for i, def := range defs {
		descs[i] = dispatch.Descriptor{Definition: def}
	}
	return descs, nil
}

// ManifestLoader turns YAML manifests into macro commands. The source is
// a file path or a doublestar pattern such as "macros/**/*.yaml".
type ManifestLoader struct {
	fs     afero.Fs
	logger *logging.Logger
}

// NewManifestLoader creates a manifest loader reading from fs
func NewManifestLoader(fs afero.Fs, logger *dlog.Logger) *ManifestLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ManifestLoader{fs: fs, logger: logging.Wrap(logger, "loader")}
}

// LoadCommandTypes loads every manifest matching source. A single file must
// be valid; files found by a pattern are skipped with a warning when broken.
func (l *ManifestLoader) LoadCommandTypes(ctx context.Context, source string) ([]dispatch.Descriptor, error) {
	files, err := l.Match(source)
	if err != nil {
		return nil, err
	}
	strict := !strings.ContainsAny(source, "*?[{")

	var descs []dispatch.Descriptor
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, derror.Wrap(err, "manifest loading interrupted").WithCode(derror.CodeIO)
		}

		manifest, err := l.LoadFile(file)
		if err != nil {
			if strict {
				return nil, err
			}
			l.logger.Warn("Failed to load manifest", "file", file, "error", err)
			continue
		}

		for i := range manifest.Commands {
			def, err := manifest.Commands[i].Definition()
			if err != nil {
				l.logger.Warn("Skipping macro", "file", file, "command", manifest.Commands[i].Name, "error", err)
				continue
			}
			descs = append(descs, dispatch.Descriptor{Definition: def})
		}
		l.logger.Info("Manifest loaded", "file", filepath.Base(file), "commands", len(manifest.Commands))
	}

	if len(descs) == 0 && !strict {
		l.logger.Info("No macro commands found", "source", source)
	}
	return descs, nil
}

// Match expands source into the sorted list of manifest files
func (l *ManifestLoader) Match(source string) ([]string, error) {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(source))
	root := l.fs
	if base != "." {
		root = afero.NewBasePathFs(l.fs, filepath.FromSlash(base))
	}
	fsys := afero.NewIOFS(root)

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, derror.Wrapf(err, "match %s", source).WithCode(derror.CodeInvalidInput)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if isManifestFile(m) {
			files = append(files, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m)))
		}
	}
	if len(files) == 0 {
		return nil, derror.Wrap(ErrNoManifests, source).WithCode(derror.CodeNotFound)
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads and validates a single manifest
func (l *ManifestLoader) LoadFile(path string) (*Manifest, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, derror.Wrapf(err, "read manifest %s", path).WithCode(derror.CodeIO)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, derror.Wrap(fmt.Errorf("%w: %v", ErrInvalidYAML, err), path).WithCode(derror.CodeConfig)
	}

	manifest.Defaults()
	if err := manifest.Validate(); err != nil {
		return nil, derror.Wrap(err, path).WithCode(derror.CodeConfig)
	}

	manifest.SourceFile = path
	manifest.LoadedAt = time.Now()
	return &manifest, nil
}
