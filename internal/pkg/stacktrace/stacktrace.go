// Package stacktrace trims goroutine stack dumps down to this module's frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// the stack that belongs to an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		loc, _, _ := strings.Cut(line[idx:], " ")
		file := line[:idx] + loc
		if _, rel, ok := strings.Cut(file, marker); ok {
			paths = append(paths, "internal/"+rel)
		}
	}
	return paths
}
