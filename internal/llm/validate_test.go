package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func triageSchema() *Schema {
	return &Schema{
		Name:        "test-triage",
		Description: "A reduced triage object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"riskTier":  map[string]any{"type": "string", "enum": []any{"Low", "Medium", "High"}},
				"riskScore": map[string]any{"type": "integer", "minimum": 0, "maximum": 10},
				"note":      map[string]any{"type": "string"},
			},
			"required": []any{"riskTier", "riskScore"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"riskTier":"High","riskScore":7,"note":"bleeding"}`, false},
		{"optional omitted", `{"riskTier":"Low","riskScore":0}`, false},
		{"missing required", `{"riskTier":"Low"}`, true},
		{"wrong type", `{"riskTier":"Low","riskScore":"zero"}`, true},
		{"enum violation", `{"riskTier":"Critical","riskScore":9}`, true},
		{"above maximum", `{"riskTier":"High","riskScore":12}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResponse(triageSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := ValidateResponse(nil, json.RawMessage(`"free text"`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_ArrayItems(t *testing.T) {
	schema := &Schema{
		Name: "test-questions",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    map[string]any{"type": "string", "minLength": 1},
				},
			},
			"required": []any{"questions"},
		},
	}

	valid := json.RawMessage(`{"questions":["Any bleeding?","Any headache?"]}`)
	if err := ValidateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	for _, raw := range []string{`{"questions":[]}`, `{"questions":[1,2]}`, `{"questions":[""]}`} {
		if err := ValidateResponse(schema, json.RawMessage(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}
