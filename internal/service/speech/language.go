package speech

// Languages the speech pipeline distinguishes between.
const (
	LanguageTamil   = "tamil"
	LanguageEnglish = "english"
)

// DetectLanguage reports which synthesis engine a piece of text belongs to.
// Any rune inside the Tamil Unicode block marks the whole text as Tamil;
// everything else is treated as English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0B80 && r <= 0x0BFF {
			return LanguageTamil
		}
	}
	return LanguageEnglish
}
