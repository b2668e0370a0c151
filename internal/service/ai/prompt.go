package ai

import "fmt"

// systemPreamble is the fixed therapist persona. The model is instructed to
// mirror the user's language and register rather than translate.
const systemPreamble = "You are a kind, empathetic therapist. " +
	"Mirror the language and tone of the user: " +
	"- If the user writes in English, reply in English.\n" +
	"- If the user writes in Tamil, reply in Tamil.\n" +
	"- If the user writes in Tanglish (Tamil + English), reply in Tanglish.\n" +
	"Your tone should be friendly, supportive, and informal. " +
	"Do not translate the user's message—respond naturally in the same language or mix used."

// SystemPrompt builds the conversation preamble, folding in the user's last
// detected emotional state so the model can respond with matching empathy.
func SystemPrompt(currentEmotion string) string {
	if currentEmotion == "" {
		currentEmotion = "unknown"
	}
	return fmt.Sprintf("%s The user's current emotional state appears to be: %s. "+
		"Please respond with appropriate empathy and support.", systemPreamble, currentEmotion)
}
