package api

import "testing"

func TestNormalizeErrorMessage(t *testing.T) {
	const fallback = "Something went wrong."

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "string error field",
			raw:  `{"error": "Request limit reached"}`,
			want: "Request limit reached",
		},
		{
			name: "nested error object",
			raw:  `{"error": {"message": "Invalid model", "code": 400}}`,
			want: "Invalid model",
		},
		{
			name: "message field",
			raw:  `{"message": "Not found"}`,
			want: "Not found",
		},
		{
			name: "msg field",
			raw:  `{"msg": "Temporarily unavailable"}`,
			want: "Temporarily unavailable",
		},
		{
			name: "json embedded in gateway prose",
			raw:  `upstream said: {"error": "Model overloaded"} (request id 123)`,
			want: "Model overloaded",
		},
		{
			name: "plain text body",
			raw:  "service unavailable",
			want: "service unavailable",
		},
		{
			name: "empty body",
			raw:  "",
			want: fallback,
		},
		{
			name: "whitespace body",
			raw:  "   \n  ",
			want: fallback,
		},
		{
			name: "unparseable json noise",
			raw:  `{"error": [1, 2,`,
			want: fallback,
		},
		{
			name: "json without usable fields",
			raw:  `{"status": 500}`,
			want: fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeErrorMessage(tt.raw, fallback); got != tt.want {
				t.Errorf("NormalizeErrorMessage(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindBackend, Op: "generate-persona", Message: "boom"}
	if err.Error() != "generate-persona: boom" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("generate-persona", "too short")
	if err.Kind != KindValidation || err.Message != "too short" {
		t.Fatalf("err = %+v", err)
	}
}
