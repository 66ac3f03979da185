package util

import (
	"regexp"

	"github.com/tidwall/gjson"
)

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSONObject pulls the outermost {...} out of an LLM reply, which is
// often wrapped in prose or a markdown fence.
func ExtractJSONObject(text string) (string, bool) {
	return extract(jsonObjectPattern, text)
}

func ExtractJSONArray(text string) (string, bool) {
	return extract(jsonArrayPattern, text)
}

func extract(re *regexp.Regexp, text string) (string, bool) {
	match := re.FindString(text)
	if match == "" || !gjson.Valid(match) {
		return "", false
	}
	return match, true
}
