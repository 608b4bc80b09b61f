package questions

import "testing"

func TestParseQuestionListCleansModelOutput(t *testing.T) {
	raw := "Here you go:\n```json\n[\n" +
		`{"category":"Space","question":"Closest star to Earth?","options":["Sun","Sirius","Vega","Rigel"],"correctAnswer":"Sun"},` + "\n" +
		`{"category":"Space","question":"Bad item","options":["A","B","C"],"correctAnswer":"A"},` + "\n" +
		`{"category":"Space","question":"Wrong answer","options":["A","B","C","D"],"correctAnswer":"E"},` + "\n" +
		"]\n```"

	got, err := parseQuestionList(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 valid question, got %d", len(got))
	}
	if got[0].Text != "Closest star to Earth?" || got[0].Kind != "text" {
		t.Fatalf("unexpected question: %+v", got[0])
	}
}

func TestParseQuestionListAcceptsSingleObject(t *testing.T) {
	raw := `{"category":"Music","question":"Keys on a piano?","options":["88","76","92","64"],"correctAnswer":"88",}`

	got, err := parseQuestionList(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(got) != 1 || got[0].CorrectAnswer != "88" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParseQuestionRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no json", raw: "I cannot help with that."},
		{name: "broken json", raw: `{"category": "x", "question": }`},
		{name: "missing options", raw: `{"category":"x","question":"y","correctAnswer":"z"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseQuestion(tc.raw); err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
		})
	}
}

func TestSanitizeTheme(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Space Mysteries", want: "Space Mysteries"},
		{input: "\"80s Cartoons\"\n", want: "80s Cartoons"},
		{input: "**Mythical Creatures**\nThis theme covers...", want: "Mythical Creatures"},
		{input: "Theme: Deep Sea Life.", want: "Deep Sea Life"},
	}
	for _, tc := range tests {
		if got := sanitizeTheme(tc.input); got != tc.want {
			t.Fatalf("sanitizeTheme(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
