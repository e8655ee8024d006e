package llmkernel

import (
	"bufio"
	"regexp"
	"strings"
)

// toolCallPattern matches a single tool-invocation line the model emits
// when it wants the kernel to run a tool before it continues, e.g.
// "TOOL_CALL: read_file(internal/app/app.go)" or with several
// comma-separated arguments. This line-oriented contract exists because
// the underlying llms.Model exposes only a plain Call(ctx, prompt) —
// no native structured tool-calling — so the kernel has to parse its own
// protocol out of the response text, the same state-machine-over-lines
// technique the teacher's parseMarkdownReview uses for its own
// line-prefix-driven format.
var toolCallPattern = regexp.MustCompile(`^TOOL_CALL:\s*(\w+)\((.*)\)\s*$`)

// ToolCall is one parsed invocation request.
type ToolCall struct {
	Name string
	Args []string
}

// extractToolCalls scans raw model output for TOOL_CALL lines. A response
// with none is treated as final output.
func extractToolCalls(raw string) []ToolCall {
	var calls []ToolCall
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := toolCallPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		calls = append(calls, ToolCall{Name: m[1], Args: splitArgs(m[2])})
	}
	return calls
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// taggedSection extracts the content of a single named XML-ish section,
// e.g. <readme>...</readme>, allowing attributes on the opening tag and
// tolerating surrounding whitespace — the output-wrapper contract every
// prompt template in prompts/ asks the model to follow.
func taggedSection(raw, tag string) (string, bool) {
	pattern := regexp.MustCompile(`(?s)<` + tag + `[^>]*>(.*?)</` + tag + `>`)
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// jsonFence extracts the content of the first ```json fenced block, the
// prompt library's fallback output format when a model skips its wrapping
// tag.
func jsonFence(raw string) (string, bool) {
	m := jsonFencePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractResult implements the Prompt Library's three-tier extraction
// contract (spec §4.D): the named wrapping tag, falling back to a
// ```json``` fenced block, falling back to the raw trimmed output. tag may
// be empty when a template has no wrapper (e.g. GenerateMindMap, whose
// output is post-processed by StripTag instead).
func ExtractResult(raw, tag string) string {
	if tag != "" {
		if v, ok := taggedSection(raw, tag); ok {
			return v
		}
	}
	if v, ok := jsonFence(raw); ok {
		return v
	}
	return strings.TrimSpace(raw)
}

var classifyPattern = regexp.MustCompile(`(?is)<classify>\s*classifyname\s*:\s*(.*?)\s*</classify>`)

// ParseClassifyTag extracts the value out of RepositoryClassification's
// <classify>classifyName:<value></classify> wrapper.
func ParseClassifyTag(raw string) (string, bool) {
	m := classifyPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// StripTag removes every occurrence of <tag>...</tag> from raw and returns
// the remainder trimmed, e.g. stripping <thinking> scratch blocks out of
// GenerateMindMap's output or <project_analysis> out of Overview's.
func StripTag(raw, tag string) string {
	pattern := regexp.MustCompile(`(?s)<` + tag + `[^>]*>.*?</` + tag + `>`)
	return strings.TrimSpace(pattern.ReplaceAllString(raw, ""))
}
