package prompt

// TitleSuggestionVars holds variables for the title suggestion prompt template
type TitleSuggestionVars struct {
	TitleJa  string
	ArtistJa string
}

// BuildTitleSuggestion builds the prompt asking for the Korean title most
// listeners in Korea know the song by. The song fields are inserted verbatim.
func BuildTitleSuggestion(titleJa, artistJa string) (string, error) {
	return DefaultPromptBuilder().Render(TemplateTitleSuggestion, TitleSuggestionVars{
		TitleJa:  titleJa,
		ArtistJa: artistJa,
	})
}
