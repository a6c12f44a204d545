package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

/* Path expressions accepted in a field mapping:
 *   contact.phone        dotted keys
 *   $.contact.phone      JSONPath-style root prefix
 *   contacts[0].wa_id    bracket array index
 *   contacts.0.wa_id     dotted array index
 *   /contacts/0/wa_id    JSON Pointer (RFC 6901)
 */

// ParsePath splits a path expression into segments
func ParsePath(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("path is empty")
	}

	if strings.HasPrefix(expr, "/") {
		return parsePointer(expr), nil
	}

	expr = strings.TrimPrefix(expr, "$")
	expr = strings.TrimPrefix(expr, ".")

	var segments []string
	for _, part := range strings.Split(expr, ".") {
		if part == "" {
			return nil, fmt.Errorf("path %q has an empty segment", expr)
		}
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segments = append(segments, part)
				break
			}
			if open > 0 {
				segments = append(segments, part[:open])
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q has an unclosed bracket", expr)
			}
			index := strings.Trim(part[open+1:open+end], `"'`)
			if index == "" {
				return nil, fmt.Errorf("path %q has an empty index", expr)
			}
			segments = append(segments, index)
			part = part[open+end+1:]
		}
	}
	return segments, nil
}

func parsePointer(expr string) []string {
	raw := strings.Split(expr[1:], "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ReplaceAll(s, "~1", "/")
		s = strings.ReplaceAll(s, "~0", "~")
		segments = append(segments, s)
	}
	return segments
}

// Resolve walks doc along expr. ok is false when any segment is missing.
func Resolve(doc any, expr string) (value any, ok bool) {
	segments, err := ParsePath(expr)
	if err != nil {
		return nil, false
	}

	current := doc
	for _, seg := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, found := node[seg]
			if !found {
				return nil, false
			}
			current = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, current != nil
}
