package services

import "strings"

// CrisisResourceReply is returned by the legacy /ask path when a message
// matches a known crisis phrase. Keyword lists are incomplete by nature, so
// session chats rely on the model's safety instructions instead; only the
// unauthenticated legacy path keeps this short-circuit.
const CrisisResourceReply = "It sounds like you are going through something really difficult right now. " +
	"You don't have to face this alone. Please reach out to someone who can help immediately: " +
	"call or text 988 (Suicide & Crisis Lifeline), or dial your local emergency number. " +
	"If you can, talk to someone you trust and let them know how you are feeling."

var crisisPhrases = []string{
	"kill myself",
	"end my life",
	"suicide",
	"suicidal",
	"want to die",
	"hurt myself",
	"self harm",
	"self-harm",
}

// ContainsCrisisLanguage reports whether the text matches one of the fixed
// crisis phrases, case-insensitively.
func ContainsCrisisLanguage(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range crisisPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
