package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func languages() Choice[string] {
	return NewChoice(
		Option[string]{Label: "English", Value: "en"},
		Option[string]{Label: "العربية", Detail: "Arabic", Value: "ar"},
	)
}

func TestChoiceArrowsWrap(t *testing.T) {
	c := languages()

	c, picked := c.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if picked || c.Value() != "ar" {
		t.Fatalf("up from the top should wrap to the last option, got %q", c.Value())
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if c.Cursor() != 0 {
		t.Fatalf("down from the bottom should wrap, got %d", c.Cursor())
	}

	c, picked = c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !picked || c.Value() != "en" {
		t.Errorf("enter should pick %q, got %q (picked=%v)", "en", c.Value(), picked)
	}
}

func TestChoiceNumberPicks(t *testing.T) {
	c, picked := languages().Update(tea.KeyPressMsg{Code: '2', Text: "2"})
	if !picked || c.Value() != "ar" {
		t.Fatalf("2 should pick ar, got %q (picked=%v)", c.Value(), picked)
	}
	if _, picked := languages().Update(tea.KeyPressMsg{Code: '7', Text: "7"}); picked {
		t.Error("out of range number should be ignored")
	}

	view := c.View()
	if !strings.Contains(view, "▸ 2  العربية") || !strings.Contains(view, "Arabic") {
		t.Errorf("selected option not marked:\n%s", view)
	}
}

func TestChoiceEmpty(t *testing.T) {
	var c Choice[int]
	if _, picked := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); picked {
		t.Error("empty choice cannot be picked")
	}
	if c.Value() != 0 {
		t.Error("empty choice should return the zero value")
	}
}

func TestTextInputNumericOnly(t *testing.T) {
	in := NewTextInput("Age", true, 3)
	for _, r := range "2a9" {
		in, _ = in.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if in.Value() != "29" {
		t.Fatalf("value = %q, want 29", in.Value())
	}
	n, err := in.NumericValue()
	if err != nil || n != 29 {
		t.Errorf("NumericValue() = %d, %v", n, err)
	}

	in.Reset()
	if in.Value() != "" {
		t.Errorf("Reset left %q", in.Value())
	}
}

func TestQuestionProgress(t *testing.T) {
	if got := QuestionProgress(2, 5, 40); strings.Count(got, "●") != 2 || strings.Count(got, "○") != 3 || !strings.Contains(got, "2/5") {
		t.Errorf("unexpected dots:\n%s", got)
	}
	// Too many questions for the width: proportional bar, counter intact.
	narrow := QuestionProgress(10, 20, 12)
	if !strings.Contains(narrow, "10/20") || strings.Count(narrow, "●") != 2 {
		t.Errorf("unexpected narrow bar:\n%s", narrow)
	}
	if QuestionProgress(1, 0, 40) != "" {
		t.Error("no total should render nothing")
	}
	if got := QuestionProgress(9, 3, 40); !strings.Contains(got, "3/3") {
		t.Errorf("done should clamp to total:\n%s", got)
	}
}
