package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/llm"
	"github.com/abhisek/mamacheck/internal/retrieval"
	"github.com/abhisek/mamacheck/internal/risk"
)

// GeneratorConfig holds configuration for the LLM generator.
type GeneratorConfig struct {
	MaxTokens     int
	Temperature   float64
	QuestionCount int
	TopK          int
}

// DefaultGeneratorConfig returns sensible defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens:     512,
		Temperature:   0.2,
		QuestionCount: 3,
		TopK:          retrieval.DefaultTopK,
	}
}

// LLMGenerator implements AssessmentGenerator and QuestionGenerator over an
// llm.Provider. Prompts are grounded with retrieved corpus context.
type LLMGenerator struct {
	provider  llm.Provider
	retriever *retrieval.Retriever
	rules     *risk.RuleSet
	cfg       GeneratorConfig
}

// NewLLMGenerator creates a generator. A nil rule set means the embedded one.
func NewLLMGenerator(provider llm.Provider, retriever *retrieval.Retriever, rules *risk.RuleSet, cfg GeneratorConfig) *LLMGenerator {
	if rules == nil {
		rules = risk.DefaultRuleSet()
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultGeneratorConfig().QuestionCount
	}
	return &LLMGenerator{provider: provider, retriever: retriever, rules: rules, cfg: cfg}
}

func (g *LLMGenerator) Name() string {
	return "llm:" + g.provider.Name()
}

// assessmentOutput is the raw LLM response.
type assessmentOutput struct {
	RiskTier          string   `json:"riskTier"`
	RiskScore         int      `json:"riskScore"`
	MatchedFactors    []string `json:"matchedFactors"`
	Explanation       string   `json:"explanation"`
	Recommendation    string   `json:"recommendation"`
	DetectedCondition *string  `json:"detectedCondition"`
}

type questionsOutput struct {
	Questions []string `json:"questions"`
}

// TryAssess asks the model for an assessment. Answers with no content are
// left to the rule engine.
func (g *LLMGenerator) TryAssess(ctx context.Context, in Input) (*risk.Assessment, error) {
	if !hasContent(in.Answers) {
		return nil, ErrNoResult
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeAssessment)

	userMsg, err := g.buildMessage(assessmentUserTemplate, in)
	if err != nil {
		return nil, fmt.Errorf("build assessment prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      g.systemPrompt(assessmentInstructions, in),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      AssessmentSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM assessment failed: %w", err)
	}
	if err := llm.ValidateResponse(AssessmentSchema, resp.Content); err != nil {
		return nil, err
	}

	var raw assessmentOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse assessment response: %w", err)
	}

	tier, err := knowledge.ParseTier(raw.RiskTier)
	if err != nil {
		return nil, err
	}

	out := &risk.Assessment{
		RiskTier:       tier,
		RiskScore:      raw.RiskScore,
		MatchedFactors: g.factors(raw.MatchedFactors, tier, in.Language),
		Explanation:    strings.TrimSpace(raw.Explanation),
		Recommendation: strings.TrimSpace(raw.Recommendation),
	}
	// Condition ids outside the rule set are dropped, not trusted.
	if raw.DetectedCondition != nil && g.rules.HasPattern(*raw.DetectedCondition) {
		id := *raw.DetectedCondition
		out.DetectedCondition = &id
	}
	return out, nil
}

// TryQuestions asks the model for the next screening questions.
func (g *LLMGenerator) TryQuestions(ctx context.Context, in Input) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)

	userMsg, err := g.buildMessage(questionsUserTemplate, in)
	if err != nil {
		return nil, fmt.Errorf("build questions prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      g.systemPrompt(questionInstructions, in),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      QuestionsSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM question generation failed: %w", err)
	}
	if err := llm.ValidateResponse(QuestionsSchema, resp.Content); err != nil {
		return nil, err
	}

	var raw questionsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse questions response: %w", err)
	}

	qs := freshQuestions(raw.Questions, in.Asked)
	if len(qs) == 0 {
		return nil, ErrNoResult
	}
	if len(qs) > g.cfg.QuestionCount {
		qs = qs[:g.cfg.QuestionCount]
	}
	return qs, nil
}

// factors maps generated phrases to rule bands. Phrases the rule set does
// not know take the band of the generated tier.
func (g *LLMGenerator) factors(phrases []string, tier knowledge.Tier, lang knowledge.Language) []risk.Factor {
	fallback := map[knowledge.Tier]risk.Band{
		knowledge.TierHigh:   risk.BandHigh,
		knowledge.TierMedium: risk.BandMedium,
		knowledge.TierLow:    risk.BandLow,
	}[tier]

	out := []risk.Factor{}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		band, ok := g.rules.BandOf(p, lang)
		if !ok {
			band = fallback
		}
		out = append(out, risk.Factor{Phrase: p, Band: band, Weight: band.Weight()})
	}
	return out
}

type promptData struct {
	Answers         []string
	Age             int
	GestationalWeek int
	Asked           []string
	Count           int
}

func (g *LLMGenerator) buildMessage(tmpls map[knowledge.Language]*template.Template, in Input) (string, error) {
	tmpl, ok := tmpls[in.Language]
	if !ok {
		tmpl = tmpls[knowledge.English]
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Answers:         nonEmpty(in.Answers),
		Age:             in.Age,
		GestationalWeek: in.GestationalWeek,
		Asked:           in.Asked,
		Count:           g.cfg.QuestionCount,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (g *LLMGenerator) systemPrompt(instructions map[knowledge.Language]string, in Input) string {
	text, ok := instructions[in.Language]
	if !ok {
		text = instructions[knowledge.English]
	}

	var b strings.Builder
	b.WriteString(text)

	b.WriteString("\n\nConditions (id: name):\n")
	for _, p := range g.rules.Patterns(in.Language) {
		fmt.Fprintf(&b, "- %s: %s\n", p.ID, p.Name)
	}

	if g.retriever != nil {
		b.WriteString("\nMedical knowledge:\n")
		b.WriteString(g.retriever.RelevantContext(in.Answers, in.Language, g.cfg.TopK))
	}
	return b.String()
}

var assessmentInstructions = map[knowledge.Language]string{
	knowledge.English: `You are a prenatal triage assistant. Assess the pregnancy risk described by the patient's answers.

Instructions:
- Use only the answers and the medical knowledge below. Do not diagnose.
- Choose High for bleeding, severe pain, vision changes, severe headache, reduced fetal movement, fluid leakage or fainting.
- When unsure between two tiers, choose the higher one.
- matchedFactors must quote phrases from the answers.
- detectedCondition must be one of the listed ids, or null.
- Write explanation and recommendation in English, plainly, without alarming language.`,
	knowledge.Arabic: `أنت مساعد فرز لرعاية الحوامل. قيّم مخاطر الحمل الموصوفة في إجابات المريضة.

التعليمات:
- استخدم الإجابات والمعرفة الطبية أدناه فقط. لا تضع تشخيصًا.
- اختر High عند النزيف أو الألم الشديد أو تغيرات الرؤية أو الصداع الشديد أو قلة حركة الجنين أو تسرب السوائل أو الإغماء.
- عند التردد بين مستويين اختر الأعلى.
- يجب أن تقتبس matchedFactors عبارات من الإجابات.
- يجب أن يكون detectedCondition أحد المعرفات المذكورة أو null.
- اكتب الشرح والتوصية باللغة العربية بوضوح ودون تهويل.`,
}

var questionInstructions = map[knowledge.Language]string{
	knowledge.English: `You are a prenatal screening assistant. Ask the next questions that best clarify the patient's pregnancy risk.

Instructions:
- Ask about symptoms the answers mention but do not fully describe (onset, severity, duration).
- One topic per question, answerable in one sentence.
- Never repeat a question already asked.
- Write the questions in English.`,
	knowledge.Arabic: `أنت مساعد فحص لرعاية الحوامل. اطرح الأسئلة التالية التي توضح مخاطر الحمل لدى المريضة.

التعليمات:
- اسأل عن الأعراض التي ذُكرت دون وصف كامل (البداية والشدة والمدة).
- موضوع واحد لكل سؤال ويمكن الإجابة عنه بجملة واحدة.
- لا تكرر سؤالًا سبق طرحه.
- اكتب الأسئلة باللغة العربية.`,
}

var assessmentUserTemplate = map[knowledge.Language]*template.Template{
	knowledge.English: template.Must(template.New("assess-en").Parse(`{{if .Age}}Age: {{.Age}}
{{end}}{{if .GestationalWeek}}Gestational week: {{.GestationalWeek}}
{{end}}Patient answers:
{{range .Answers}}- {{.}}
{{end}}`)),
	knowledge.Arabic: template.Must(template.New("assess-ar").Parse(`{{if .Age}}العمر: {{.Age}}
{{end}}{{if .GestationalWeek}}أسبوع الحمل: {{.GestationalWeek}}
{{end}}إجابات المريضة:
{{range .Answers}}- {{.}}
{{end}}`)),
}

var questionsUserTemplate = map[knowledge.Language]*template.Template{
	knowledge.English: template.Must(template.New("questions-en").Parse(`Ask {{.Count}} questions.
{{if .GestationalWeek}}Gestational week: {{.GestationalWeek}}
{{end}}{{if .Answers}}Answers so far:
{{range .Answers}}- {{.}}
{{end}}{{end}}{{if .Asked}}Already asked:
{{range .Asked}}- {{.}}
{{end}}{{end}}`)),
	knowledge.Arabic: template.Must(template.New("questions-ar").Parse(`اطرح {{.Count}} أسئلة.
{{if .GestationalWeek}}أسبوع الحمل: {{.GestationalWeek}}
{{end}}{{if .Answers}}الإجابات حتى الآن:
{{range .Answers}}- {{.}}
{{end}}{{end}}{{if .Asked}}أسئلة سبق طرحها:
{{range .Asked}}- {{.}}
{{end}}{{end}}`)),
}

func hasContent(answers []string) bool {
	return len(nonEmpty(answers)) > 0
}

func nonEmpty(answers []string) []string {
	var out []string
	for _, a := range answers {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// freshQuestions trims, drops blanks and drops questions already asked or
// repeated, comparing case-insensitively.
func freshQuestions(candidates, asked []string) []string {
	seen := make([]string, 0, len(asked)+len(candidates))
	for _, a := range asked {
		seen = append(seen, strings.ToLower(strings.TrimSpace(a)))
	}
	var out []string
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" || slices.Contains(seen, key) {
			continue
		}
		seen = append(seen, key)
		out = append(out, q)
	}
	return out
}
