package convert

import (
	"path/filepath"
	"strings"
)

// OutputExt is the extension of every converted file.
const OutputExt = ".tif"

// Task pairs an input file with the TIFF it converts to.
type Task struct {
	Input  string
	Output string
}

// Tasks derives one Task per input path, preserving order. Outputs are
// <stem>.tif inside outDir, whatever directory the input lives in.
func Tasks(paths []string, outDir string) []Task {
	tasks := make([]Task, len(paths))
	for i, p := range paths {
		tasks[i] = Task{Input: p, Output: filepath.Join(outDir, Stem(p)+OutputExt)}
	}
	return tasks
}

// Stem returns the base name of path without its final extension. A leading
// dot does not start an extension, so ".scan" keeps its whole name, and
// neither does a trailing dot.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base || ext == "." {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
