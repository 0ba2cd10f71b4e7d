// Package question screens transcribed text for questions worth
// answering, using keyword and pattern scoring rather than a model.
package question

import (
	"regexp"
	"strings"
)

var questionWords = map[string]bool{
	"who": true, "what": true, "where": true, "when": true, "why": true,
	"how": true, "which": true, "whose": true, "whom": true,
	"can": true, "could": true, "would": true, "should": true, "will": true,
	"is": true, "are": true, "was": true, "were": true,
	"do": true, "does": true, "did": true,
	"has": true, "have": true, "had": true,
}

var auxiliaries = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "would": true, "should": true, "will": true,
	"has": true, "have": true, "had": true,
}

var questionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\?`),
	regexp.MustCompile(`(?i)^(who|what|where|when|why|how|which|whose|whom)\s+`),
	regexp.MustCompile(`(?i)\b(can|could|would|should|will|is|are|was|were|do|does|did|has|have|had)\s+\w+\s+\?`),
	regexp.MustCompile(`(?i)^(is|are|was|were|do|does|did|can|could|would|should|will)\s+`),
}

var sentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Detector scores text for question likelihood.
type Detector struct {
	sensitivity float64
}

// Question is one detected question with its confidence score.
type Question struct {
	Text       string
	Confidence float64
}

// New creates a detector. Sensitivity runs 0.0-1.0; higher detects more
// questions by lowering the confidence threshold.
func New(sensitivity float64) *Detector {
	return &Detector{sensitivity: clamp01(sensitivity)}
}

// IsQuestion reports whether text reads as a question, with a confidence
// in 0.0-1.0. Signals stack: an explicit question mark, a leading
// question word, a matching pattern, and auxiliary-verb inversion.
func (d *Detector) IsQuestion(text string) (bool, float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, 0
	}

	confidence := 0.0

	if strings.Contains(text, "?") {
		confidence += 0.5
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) > 0 {
		first := strings.TrimRight(words[0], "?.,!")
		if questionWords[first] {
			confidence += 0.3
		}
	}

	for _, pattern := range questionPatterns {
		if pattern.MatchString(text) {
			confidence += 0.2
			break
		}
	}

	if len(words) >= 2 && auxiliaries[words[0]] {
		confidence += 0.2
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	// Higher sensitivity lowers the threshold.
	threshold := 0.3 + 0.4*(1.0-d.sensitivity)
	return confidence >= threshold, confidence
}

// Extract splits text into sentences and returns those that score as
// questions. Sentence terminators stay attached so question marks still
// count toward the score.
func (d *Detector) Extract(text string) []Question {
	var questions []Question
	for _, sentence := range sentenceSplit.FindAllString(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if ok, confidence := d.IsQuestion(sentence); ok {
			questions = append(questions, Question{Text: sentence, Confidence: confidence})
		}
	}
	return questions
}

// SetSensitivity updates the detection threshold.
func (d *Detector) SetSensitivity(sensitivity float64) {
	d.sensitivity = clamp01(sensitivity)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
