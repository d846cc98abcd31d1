package screening

import "github.com/abhisek/mamacheck/internal/llm"

// AssessmentSchema constrains generated assessments. Caps on score and
// factor count are enforced after decoding, not by the schema.
var AssessmentSchema = &llm.Schema{
	Name:        "risk-assessment",
	Description: "Pregnancy symptom triage: risk tier, score, factors and advice",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"riskTier": map[string]any{
				"type":        "string",
				"enum":        []any{"Low", "Medium", "High"},
				"description": "Triage tier. High means the patient needs immediate medical attention",
			},
			"riskScore": map[string]any{
				"type":        "integer",
				"description": "Severity score from 0 to 10",
			},
			"matchedFactors": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Up to three symptom phrases from the answers, most severe first",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Two sentences at most, in the patient's language",
			},
			"recommendation": map[string]any{
				"type":        "string",
				"description": "What the patient should do next, in the patient's language",
			},
			"detectedCondition": map[string]any{
				"type":        []any{"string", "null"},
				"description": "One of the listed condition ids, or null",
			},
		},
		"required":             []any{"riskTier", "riskScore", "matchedFactors", "explanation", "recommendation", "detectedCondition"},
		"additionalProperties": false,
	},
}

// QuestionsSchema constrains generated screening questions.
var QuestionsSchema = &llm.Schema{
	Name:        "screening-questions",
	Description: "Follow-up questions for a pregnancy risk screening",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Short, single-topic questions in the patient's language",
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
