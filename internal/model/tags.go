package model

import "strings"

// ParseTags turns the comma-separated tag input from a form into an ordered
// tag list. Each segment is trimmed; segments that are blank after trimming
// are dropped. Empty input yields an empty, non-nil slice.
//
//	ParseTags("go, web ,  sql") → ["go", "web", "sql"]
//	ParseTags("")               → []
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	for _, segment := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(segment); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags, used to show tags as editable text.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
