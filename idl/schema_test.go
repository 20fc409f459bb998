package idl

import (
	"strings"
	"testing"
)

func TestCheckSchema(t *testing.T) {
	valid, err := Marshal(sampleDefinition())
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckSchema(valid); err != nil {
		t.Fatalf("CheckSchema(valid) = %v", err)
	}

	tests := []struct {
		name string
		edit func(string) string
	}{
		{
			name: "misspelled key",
			edit: func(s string) string { return strings.Replace(s, `"target_language"`, `"target_lang"`, 1) },
		},
		{
			name: "wrong kind",
			edit: func(s string) string { return strings.Replace(s, `"overload_index": 0`, `"overload_index": "zero"`, 1) },
		},
		{
			name: "negative dimensions",
			edit: func(s string) string { return strings.Replace(s, `"dimensions": 0`, `"dimensions": -1`, 1) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSchema([]byte(tt.edit(string(valid))))
			if err == nil {
				t.Fatal("expected schema error")
			}
			if !IsCode(err, CodeValidation) {
				t.Errorf("error = %v, want validation code", err)
			}
		})
	}
}

func TestCheckSchema_NotJSON(t *testing.T) {
	if err := CheckSchema([]byte("{")); !IsCode(err, CodeValidation) {
		t.Errorf("CheckSchema() = %v, want validation error", err)
	}
}
