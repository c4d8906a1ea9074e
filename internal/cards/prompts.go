package cards

import (
	"fmt"
	"strings"
)

// buildTextPrompt assembles the instruction sent to the text-generation
// service from the card fields.
func buildTextPrompt(req GenerateRequest, style Style) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short greeting card message for %s for their %s.", req.Recipient, req.Occasion)
	fmt.Fprintf(&b, " The tone should be %s: %s.", strings.ToLower(style.Name), strings.ToLower(style.Description))
	if req.Message != "" {
		fmt.Fprintf(&b, " Work in this personal note from the sender: %q.", req.Message)
	}
	if req.Sender != "" {
		fmt.Fprintf(&b, " Sign it from %s.", req.Sender)
	}
	b.WriteString(" Keep it under 60 words and do not include a subject line.")
	return b.String()
}

// buildImagePrompt assembles the illustration prompt. The generated card
// text refines it so the picture matches the words.
func buildImagePrompt(req GenerateRequest, style Style, generatedText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A greeting card illustration for a %s", req.Occasion)
	fmt.Fprintf(&b, ", %s mood", strings.ToLower(style.Description))
	if theme := firstSentence(generatedText); theme != "" {
		fmt.Fprintf(&b, ", inspired by the message %q", theme)
	}
	b.WriteString(". Soft colors, no text in the image.")
	return b.String()
}

// firstSentence trims the generated text down to its first sentence so the
// image prompt stays short.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.Index(text, sep); i >= 0 {
			return text[:i+1]
		}
	}
	return text
}
