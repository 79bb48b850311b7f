package script

// Directive is one sentence of a planned video: the spoken text, the prompt
// used to generate its image, and the narration voice. Directive order is the
// temporal order of the final video.
type Directive struct {
	Text        string
	ImagePrompt string
	VoiceID     string
}

// VoiceTable maps the closed set of tone labels to voice identifiers.
// Narrator doubles as the fallback for unknown tones.
type VoiceTable struct {
	Documentary   string
	Upbeat        string
	Promotional   string
	Instructional string
	Narrator      string
}

func (t VoiceTable) ForTone(tone string) string {
	switch tone {
	case "documentary":
		return t.Documentary
	case "upbeat":
		return t.Upbeat
	case "promotional":
		return t.Promotional
	case "instructional":
		return t.Instructional
	default:
		return t.Narrator
	}
}

func (t VoiceTable) Contains(voiceID string) bool {
	if voiceID == "" {
		return false
	}
	switch voiceID {
	case t.Documentary, t.Upbeat, t.Promotional, t.Instructional, t.Narrator:
		return true
	}
	return false
}
