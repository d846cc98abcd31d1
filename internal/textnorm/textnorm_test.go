package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Severe HEADACHE", "severe headache"},
		{"collapse whitespace", "  pain   on\tone side \n", "pain on one side"},
		{"latin accents", "naïve café", "naive cafe"},
		{"tanween", "تورماً مفاجئاً", "تورما مفاجيا"},
		{"hamza under alif", "إغماء", "اغماء"},
		{"hamza over alif", "أعاني", "اعاني"},
		{"madda", "آلام", "الام"},
		{"hamza on ya seat", "طارئ", "طاري"},
		{"hamza on waw seat", "مؤلم", "مولم"},
		{"tatweel", "صــداع", "صداع"},
		{"alef maqsura", "حمى", "حمي"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestFold_Idempotent(t *testing.T) {
	for _, s := range []string{"Severe Abdominal Pain", "أعاني من صداع شديد", "لاحظت تورماً مفاجئاً"} {
		once := Fold(s)
		if Fold(once) != once {
			t.Errorf("Fold(Fold(%q)) = %q, want %q", s, Fold(once), once)
		}
	}
}

func TestJoin_SkipsBlankAnswers(t *testing.T) {
	got := Join([]string{"No", "  ", "Feel DIZZY"})
	if got != "no\nfeel dizzy" {
		t.Fatalf("Join = %q", got)
	}
	if strings.Contains(Join(nil), "\n") {
		t.Fatal("expected empty join for nil answers")
	}
}

func TestTokens_DropsStopWords(t *testing.T) {
	got := Tokens("I have a severe headache and some swelling")
	assert.Equal(t, []string{"severe", "headache", "swelling"}, got)

	got = Tokens("أعاني من صداع شديد")
	assert.Equal(t, []string{"اعاني", "صداع", "شديد"}, got)
}
