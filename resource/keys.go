package resource

import "strings"

// SnakeToCamel converts snake_case document keys to camelCase row
// attributes; usable as Mapping.DecodeKey.
func SnakeToCamel(key string) string {
	parts := strings.Split(key, "_")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}

// CamelToSnake converts camelCase row attributes to snake_case document
// keys; usable as Mapping.EncodeKey.
func CamelToSnake(key string) string {
	var sb strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
