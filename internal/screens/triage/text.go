package triage

import "github.com/abhisek/mamacheck/internal/knowledge"

// strings shown by the screening screens.
type uiText struct {
	intakeTitle   string
	chooseLang    string
	namePrompt    string
	agePrompt     string
	weekPrompt    string
	badAge        string
	badWeek       string
	emptyName     string
	screenTitle   string
	thinking      string
	answerHint    string
	emptyAnswer   string
	resultTitle   string
	finishEarly   string
	submit        string
	newScreening  string
	quit          string
	back          string
	questionCount string
}

var texts = map[knowledge.Language]uiText{
	knowledge.English: {
		intakeTitle:   "Patient details",
		chooseLang:    "Choose a language",
		namePrompt:    "What is your name?",
		agePrompt:     "How old are you?",
		weekPrompt:    "How many weeks pregnant are you?",
		badAge:        "Age must be between %d and %d.",
		badWeek:       "Week must be between %d and %d.",
		emptyName:     "Please enter your name.",
		screenTitle:   "Screening",
		thinking:      "Preparing the next question...",
		answerHint:    "Describe how you feel...",
		emptyAnswer:   "Please type an answer.",
		resultTitle:   "Result",
		finishEarly:   "Finish now",
		submit:        "Submit",
		newScreening:  "New screening",
		quit:          "Quit",
		back:          "Back",
		questionCount: "Q %d/%d",
	},
	knowledge.Arabic: {
		intakeTitle:   "بيانات المريضة",
		chooseLang:    "اختاري اللغة",
		namePrompt:    "ما اسمك؟",
		agePrompt:     "كم عمرك؟",
		weekPrompt:    "في أي أسبوع من الحمل أنتِ؟",
		badAge:        "يجب أن يكون العمر بين %d و %d.",
		badWeek:       "يجب أن يكون الأسبوع بين %d و %d.",
		emptyName:     "يرجى إدخال اسمك.",
		screenTitle:   "الفحص",
		thinking:      "جارٍ تحضير السؤال التالي...",
		answerHint:    "صفي ما تشعرين به...",
		emptyAnswer:   "يرجى كتابة إجابة.",
		resultTitle:   "النتيجة",
		finishEarly:   "إنهاء الآن",
		submit:        "إرسال",
		newScreening:  "فحص جديد",
		quit:          "خروج",
		back:          "رجوع",
		questionCount: "س %d/%d",
	},
}

func textFor(lang knowledge.Language) uiText {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[knowledge.English]
}
