package shaders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/internal/watch"
)

// EntryPoint describes one entry point of a program.
type EntryPoint struct {
	Name      string
	Stage     string // "vertex", "fragment" or "compute"
	Workgroup [3]uint32
}

// Library serves program sources, optionally overridden from a directory.
//
// A file in the directory named like an embedded source (see Files) replaces
// that source; the others stay embedded. Reload and Watch swap sources only
// when every program still validates.
//
// Library is safe for concurrent use.
type Library struct {
	dir string

	mu      sync.RWMutex
	files   map[string]string
	version uint64

	watcher *watch.Watcher
}

// NewLibrary loads the embedded sources and any overrides in dir. An empty
// dir uses the embedded sources only.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{dir: dir}
	files, err := l.read()
	if err != nil {
		return nil, err
	}
	l.files = files
	l.version = 1
	return l, nil
}

// Dir returns the override directory, or "".
func (l *Library) Dir() string { return l.dir }

// Version starts at 1 and increments on every successful reload.
func (l *Library) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Source returns the composed WGSL of p.
func (l *Library) Source(p Program) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return compose(p, l.files)
}

// Module parses and lowers p to naga IR.
func (l *Library) Module(p Program) (*ir.Module, error) {
	src, err := l.Source(p)
	if err != nil {
		return nil, err
	}
	return lower(p, src)
}

// Validate runs naga IR validation on p.
func (l *Library) Validate(p Program) error {
	src, err := l.Source(p)
	if err != nil {
		return err
	}
	return validate(p, src)
}

// Compile compiles p to SPIR-V words.
func (l *Library) Compile(p Program) ([]uint32, error) {
	src, err := l.Source(p)
	if err != nil {
		return nil, err
	}
	b, err := naga.Compile(src)
	if err != nil {
		return nil, compileError(p, err)
	}
	return spirvWords(b), nil
}

// CompileAll compiles every program concurrently and returns the SPIR-V by
// program. The first failure cancels the rest.
func (l *Library) CompileAll(ctx context.Context) (map[Program][]uint32, error) {
	var (
		mu  sync.Mutex
		out = make(map[Program][]uint32, len(programFiles))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range Programs() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			words, err := l.Compile(p)
			if err != nil {
				return err
			}
			mu.Lock()
			out[p] = words
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EntryPoints lists the entry points of p in declaration order.
func (l *Library) EntryPoints(p Program) ([]EntryPoint, error) {
	m, err := l.Module(p)
	if err != nil {
		return nil, err
	}
	eps := make([]EntryPoint, 0, len(m.EntryPoints))
	for _, ep := range m.EntryPoints {
		eps = append(eps, EntryPoint{
			Name:      ep.Name,
			Stage:     stageName(ep.Stage),
			Workgroup: ep.Workgroup,
		})
	}
	return eps, nil
}

// Translate cross-compiles p. SPIR-V is returned as little-endian bytes;
// the text targets as source. GLSL has one entry point per translation unit,
// so every entry point is emitted in turn under a "// entry point" banner.
func (l *Library) Translate(p Program, t Target) ([]byte, error) {
	src, err := l.Source(p)
	if err != nil {
		return nil, err
	}
	if t == TargetSPIRV {
		b, err := naga.Compile(src)
		if err != nil {
			return nil, compileError(p, err)
		}
		return b, nil
	}

	m, err := lower(p, src)
	if err != nil {
		return nil, err
	}
	if err := validateModule(p, m); err != nil {
		return nil, err
	}

	var out string
	switch t {
	case TargetGLSL:
		var b strings.Builder
		for _, ep := range m.EntryPoints {
			opts := glsl.DefaultOptions()
			opts.EntryPoint = ep.Name
			code, _, err := glsl.Compile(m, opts)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: glsl %s: %w", ErrCompile, p, ep.Name, err)
			}
			fmt.Fprintf(&b, "// entry point %s (%s)\n%s\n", ep.Name, stageName(ep.Stage), code)
		}
		out = b.String()
	case TargetMSL:
		out, _, err = msl.Compile(m, msl.DefaultOptions())
	case TargetHLSL:
		out, _, err = hlsl.Compile(m, hlsl.DefaultOptions())
	default:
		return nil, fmt.Errorf("shaders: unsupported target %v", t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %w", ErrCompile, p, t, err)
	}
	return []byte(out), nil
}

// Reload re-reads the override directory. If any program fails validation
// the previous sources stay active and the error is returned.
func (l *Library) Reload() error {
	files, err := l.read()
	if err != nil {
		return err
	}
	for _, p := range Programs() {
		src, err := compose(p, files)
		if err != nil {
			return err
		}
		if err := validate(p, src); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.files = files
	l.version++
	v := l.version
	l.mu.Unlock()

	fractal.Logger().Info("shaders: reloaded", "dir", l.dir, "version", v)
	return nil
}

// Watch reloads the library whenever a .wgsl file in the override directory
// settles after a change, and calls onChange with the new version. Invalid
// edits are logged at Warn and keep the previous sources. Watch returns
// immediately; it stops with ctx or Close.
func (l *Library) Watch(ctx context.Context, onChange func(version uint64)) error {
	if l.dir == "" {
		return errors.New("shaders: watch needs an override directory")
	}
	l.mu.Lock()
	if l.watcher == nil {
		l.watcher = watch.New(l.dir, 0, watch.Ext(".wgsl"))
	}
	w := l.watcher
	l.mu.Unlock()

	return w.Start(ctx, func(paths []string) {
		if err := l.Reload(); err != nil {
			fractal.Logger().Warn("shaders: reload failed, keeping previous sources",
				"paths", paths, "err", err)
			return
		}
		if onChange != nil {
			onChange(l.Version())
		}
	})
}

// Close stops a running Watch.
func (l *Library) Close() {
	l.mu.Lock()
	w := l.watcher
	l.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// read loads the embedded sources and applies directory overrides.
func (l *Library) read() (map[string]string, error) {
	files, err := embeddedFiles()
	if err != nil {
		return nil, err
	}
	if l.dir == "" {
		return files, nil
	}
	for _, name := range Files() {
		b, err := os.ReadFile(filepath.Join(l.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("shaders: read override: %w", err)
		}
		files[name] = string(b)
	}
	return files, nil
}

func lower(p Program, src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, compileError(p, err)
	}
	m, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, compileError(p, err)
	}
	return m, nil
}

func validate(p Program, src string) error {
	m, err := lower(p, src)
	if err != nil {
		return err
	}
	return validateModule(p, m)
}

func validateModule(p Program, m *ir.Module) error {
	verrs, err := naga.Validate(m)
	if err != nil {
		return compileError(p, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = verrs[i]
		}
		return compileError(p, errors.Join(errs...))
	}
	return nil
}

func compileError(p Program, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCompile, p, err)
}

func stageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
