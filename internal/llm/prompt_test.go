package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt()

	for _, must := range []string{
		"ONLY the provided text",
		"name, profession, current_company, current_location, email, phone",
		`"N/A"`,
	} {
		if !strings.Contains(p, must) {
			t.Fatalf("system prompt missing %q:\n%s", must, p)
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("  Jane Doe\nData Engineer  ")
	if p != "TEXT:\nJane Doe\nData Engineer" {
		t.Fatalf("user prompt = %q", p)
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	long := strings.Repeat("a", maxPromptTextBytes+500)
	p := BuildUserPrompt(long)

	if !strings.HasSuffix(p, "(truncated)") {
		t.Fatal("truncation marker missing")
	}
	if len(p) > len("TEXT:\n")+maxPromptTextBytes+len("\n…(truncated)") {
		t.Fatalf("prompt too long: %d bytes", len(p))
	}
}

func TestUnparseableErrorMatching(t *testing.T) {
	err := &UnparseableError{Raw: []byte("garbage"), Cause: ErrUnparseable}
	if err.Error() == "" {
		t.Fatal("empty error string")
	}
	if err.Unwrap() != ErrUnparseable {
		t.Fatal("unwrap lost cause")
	}
}
