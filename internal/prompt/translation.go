package prompt

type TranslationVars struct {
	Text string
}

// BuildTranslation builds the ja→ko prompt used for draft titles and artist names.
func BuildTranslation(text string) (string, error) {
	return DefaultPromptBuilder().Render(TemplateTranslation, TranslationVars{Text: text})
}
