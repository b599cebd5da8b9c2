// Package shaders holds the WGSL programs that render fractals on the GPU
// and the naga tooling that validates and cross-compiles them.
//
// Every program is composed from embedded sources. fractal.wgsl declares the
// uniform block at group 0, binding 0 and the shading functions; quad.wgsl
// and compute.wgsl call shade(px) on it. present.wgsl is standalone.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed wgsl/*.wgsl
var embedded embed.FS

// Sentinel errors.
var (
	// ErrCompile wraps parse, lowering, validation and backend failures.
	ErrCompile = errors.New("shaders: compile failed")

	// ErrUnknownProgram is returned for a Program outside Programs().
	ErrUnknownProgram = errors.New("shaders: unknown program")
)

// Program names a composed shader program.
type Program string

// Programs.
const (
	// ProgramQuad evaluates the fractal per fragment of a fullscreen quad.
	ProgramQuad Program = "quad"
	// ProgramCompute writes the fractal into a storage texture.
	ProgramCompute Program = "compute"
	// ProgramPresent samples a texture onto a fullscreen quad.
	ProgramPresent Program = "present"
)

// Entry point names shared with the pipelines.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
	ComputeEntry  = "cs_main"
)

// WorkgroupSize is the compute workgroup edge in pixels.
const WorkgroupSize = 8

const commonFile = "fractal.wgsl"

// programFiles lists the files composed into each program, in order.
var programFiles = map[Program][]string{
	ProgramQuad:    {commonFile, "quad.wgsl"},
	ProgramCompute: {commonFile, "compute.wgsl"},
	ProgramPresent: {"present.wgsl"},
}

// Programs returns every program in a stable order.
func Programs() []Program {
	return []Program{ProgramQuad, ProgramCompute, ProgramPresent}
}

// Files returns the source file names a library directory may override.
func Files() []string {
	return []string{commonFile, "quad.wgsl", "compute.wgsl", "present.wgsl"}
}

// ParseProgram parses a program name.
func ParseProgram(s string) (Program, error) {
	p := Program(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := programFiles[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProgram, s)
	}
	return p, nil
}

// Source returns the composed WGSL of an embedded program.
func Source(p Program) (string, error) {
	files, err := embeddedFiles()
	if err != nil {
		return "", err
	}
	return compose(p, files)
}

// embeddedFiles reads every embedded source by file name.
func embeddedFiles() (map[string]string, error) {
	out := make(map[string]string, len(Files()))
	for _, name := range Files() {
		b, err := embedded.ReadFile("wgsl/" + name)
		if err != nil {
			return nil, fmt.Errorf("shaders: read embedded %s: %w", name, err)
		}
		out[name] = string(b)
	}
	return out, nil
}

func compose(p Program, files map[string]string) (string, error) {
	names, ok := programFiles[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProgram, string(p))
	}
	var b strings.Builder
	for _, name := range names {
		src, ok := files[name]
		if !ok {
			return "", fmt.Errorf("shaders: %s: missing source %s", p, name)
		}
		b.WriteString(src)
		if !strings.HasSuffix(src, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
