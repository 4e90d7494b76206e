package preproc

import (
	"strconv"
	"strings"
)

const (
	drawBuffersPrefix   = "DRAWBUFFERS:"
	renderTargetsPrefix = "RENDERTARGETS:"
)

// ParseRenderTargets extracts the render-target list from a block comment of
// the form /* DRAWBUFFERS:0123 */ (one digit per target) or
// /* RENDERTARGETS: 0,1,12 */ (comma separated). It returns nil if line has
// no well-formed list.
func ParseRenderTargets(line string) []int {
	start := strings.Index(line, "/*")
	end := strings.Index(line, "*/")

	if start < 0 || end < start+2 {
		return nil
	}

	body := strings.TrimLeft(line[start+2:end], " \t")

	switch {
	case strings.HasPrefix(body, drawBuffersPrefix):
		return parseDrawBuffers(strings.TrimSpace(body[len(drawBuffersPrefix):]))
	case strings.HasPrefix(body, renderTargetsPrefix):
		return parseRenderTargetList(strings.TrimSpace(body[len(renderTargetsPrefix):]))
	}

	return nil
}

func parseDrawBuffers(data string) []int {
	if data == "" {
		return nil
	}

	targets := make([]int, len(data))

	for i := range len(data) {
		c := data[i]
		if c < '0' || c > '9' {
			return nil
		}

		targets[i] = int(c - '0')
	}

	return targets
}

func parseRenderTargetList(data string) []int {
	if data == "" {
		return nil
	}

	fields := strings.Split(data, ",")
	targets := make([]int, len(fields))

	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil
		}

		targets[i] = n
	}

	return targets
}
