package shaders

import (
	"fmt"
	"strings"
)

// Target is a shading language naga can emit.
type Target int

// Targets.
const (
	TargetSPIRV Target = iota
	TargetGLSL
	TargetMSL
	TargetHLSL
)

var targetNames = [...]string{
	TargetSPIRV: "spirv",
	TargetGLSL:  "glsl",
	TargetMSL:   "msl",
	TargetHLSL:  "hlsl",
}

// String returns the lowercase target name.
func (t Target) String() string {
	if t >= 0 && int(t) < len(targetNames) {
		return targetNames[t]
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Binary reports whether the target output is binary rather than text.
func (t Target) Binary() bool { return t == TargetSPIRV }

// ParseTarget parses a target name ("spirv", "spv", "glsl", "msl", "metal",
// "hlsl").
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spirv", "spv", "spir-v":
		return TargetSPIRV, nil
	case "glsl":
		return TargetGLSL, nil
	case "msl", "metal":
		return TargetMSL, nil
	case "hlsl":
		return TargetHLSL, nil
	}
	return 0, fmt.Errorf("shaders: unknown target %q", s)
}
