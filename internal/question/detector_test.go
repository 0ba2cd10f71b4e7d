package question

import "testing"

func TestIsQuestion(t *testing.T) {
	d := New(0.7)

	cases := []struct {
		text string
		want bool
	}{
		{"What time is the meeting?", true},
		{"What time is the meeting", true},
		{"Can you explain the deployment process?", true},
		{"Is this the final version?", true},
		{"How does the cache invalidation work", true},
		{"The meeting is at three.", false},
		{"We shipped the release yesterday.", false},
		{"", false},
		{"   ", false},
	}
	for _, c := range cases {
		got, confidence := d.IsQuestion(c.text)
		if got != c.want {
			t.Errorf("IsQuestion(%q) = %v (confidence %.2f), want %v", c.text, got, confidence, c.want)
		}
	}
}

func TestIsQuestionConfidenceCapped(t *testing.T) {
	d := New(0.7)
	_, confidence := d.IsQuestion("What is this?")
	if confidence > 1.0 {
		t.Fatalf("confidence exceeds 1.0: %f", confidence)
	}
	if confidence < 0.5 {
		t.Fatalf("explicit question mark plus question word should score high, got %f", confidence)
	}
}

func TestSensitivityMovesThreshold(t *testing.T) {
	// A weak signal: no question mark and no auxiliary inversion, only a
	// leading question word.
	text := "Which option sounds better"

	strict := New(0.0)
	if ok, _ := strict.IsQuestion(text); ok {
		t.Error("low sensitivity should reject a weak question signal")
	}

	lenient := New(1.0)
	if ok, _ := lenient.IsQuestion(text); !ok {
		t.Error("high sensitivity should accept a weak question signal")
	}
}

func TestExtract(t *testing.T) {
	d := New(0.7)

	text := "We finished the migration. What should we tackle next? The database looks healthy."
	questions := d.Extract(text)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d: %v", len(questions), questions)
	}
	if questions[0].Text != "What should we tackle next?" {
		t.Errorf("unexpected question text: %q", questions[0].Text)
	}
}

func TestExtractKeepsQuestionMarks(t *testing.T) {
	d := New(0.7)

	questions := d.Extract("Done yet? Almost there.")
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	if questions[0].Text != "Done yet?" {
		t.Errorf("terminator should stay attached: %q", questions[0].Text)
	}
}

func TestExtractEmptyText(t *testing.T) {
	d := New(0.7)
	if qs := d.Extract(""); len(qs) != 0 {
		t.Fatalf("expected no questions, got %d", len(qs))
	}
}
