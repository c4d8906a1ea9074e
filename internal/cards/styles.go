package cards

// Style describes one of the selectable card tones.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// DefaultStyleID is used when a caller omits the style.
const DefaultStyleID = "friendly"

var styleCatalog = []Style{
	{ID: "friendly", Name: "Friendly", Description: "Warm and casual", Emoji: "😊"},
	{ID: "formal", Name: "Formal", Description: "Professional and polite", Emoji: "🎩"},
	{ID: "funny", Name: "Humorous", Description: "Light-hearted and fun", Emoji: "😂"},
	{ID: "romantic", Name: "Romantic", Description: "Sweet and loving", Emoji: "💕"},
}

// Styles returns the selectable card styles.
func Styles() []Style {
	out := make([]Style, len(styleCatalog))
	copy(out, styleCatalog)
	return out
}

// StyleByID resolves a style id, falling back to the default style for
// unknown or empty ids.
func StyleByID(id string) Style {
	for _, s := range styleCatalog {
		if s.ID == id {
			return s
		}
	}
	return styleCatalog[0]
}
