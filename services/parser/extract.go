package parser

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// fencedBlocks returns the bodies of all markdown code fences
func fencedBlocks(s string) []string {
	var blocks []string
	for _, m := range fencedBlockRe.FindAllStringSubmatch(s, -1) {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body)
		}
	}
	return blocks
}

// matchBrackets returns the end (exclusive) of the balanced JSON value
// starting at s[start], or -1. Brackets inside strings are ignored.
func matchBrackets(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return -1
			}
			open := stack[len(stack)-1]
			if (c == '}' && open != '{') || (c == ']' && open != '[') {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// balancedJSON returns the outermost balanced {} or [] substrings of s that
// are valid JSON, largest first, repairing trailing commas when that is all
// that is wrong
func balancedJSON(s string) []string {
	var candidates []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		end := matchBrackets(s, i)
		if end == -1 {
			continue
		}

		candidate := s[i:end]
		if !json.Valid([]byte(candidate)) {
			candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")
			if !json.Valid([]byte(candidate)) {
				continue
			}
		}
		candidates = append(candidates, candidate)
		// nested values are searched only when their container holds no questions
		i = end - 1
	}
	sort.SliceStable(candidates, func(a, b int) bool { return len(candidates[a]) > len(candidates[b]) })
	return candidates
}
