// Package prompt builds the final text prompt submitted to the prediction
// gateway for ad generation.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AdRequest captures the caller-supplied pieces of an ad prompt.
type AdRequest struct {
	Prompt  string
	Product string
	Locale  string
}

const defaultAdPrompt = "Polished studio advertisement of the uploaded subject"

// ComposeAd normalizes the user prompt into the text sent to the video
// model. Product names are title-cased for the caller's locale.
func ComposeAd(req AdRequest) string {
	base := strings.TrimSpace(req.Prompt)
	if base == "" {
		base = defaultAdPrompt
	}
	product := strings.TrimSpace(req.Product)
	if product == "" {
		return base
	}
	c := cases.Title(matchLanguage(req.Locale))
	return fmt.Sprintf("%s, featuring %s", base, c.String(product))
}

func matchLanguage(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.Und
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Und
	}
	return tag
}
