package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout  []byte
	stderr  []byte
	err     error
	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, s.stderr, s.err
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRecognize(t *testing.T) {
	stub := &stubRunner{stdout: []byte("Jane Doe\r\nData   Engineer\n\n\n\nBerlin\n")}
	r := NewRecognizer(Config{TesseractLang: "eng", PSM: 6}, nil)
	r.runner = stub

	got, err := r.Recognize(t.Context(), tinyPNG(t))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if want := "Jane Doe\nData Engineer\n\nBerlin"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}

	if stub.gotName != "tesseract" {
		t.Fatalf("command = %q", stub.gotName)
	}
	args := strings.Join(stub.gotArgs, " ")
	if !strings.Contains(args, "stdout -l eng --psm 6") {
		t.Fatalf("args = %q", args)
	}
	if !strings.HasSuffix(stub.gotArgs[0], ".png") {
		t.Fatalf("input path = %q, want temp png", stub.gotArgs[0])
	}
}

func TestRecognizeDecodeFailure(t *testing.T) {
	stub := &stubRunner{stdout: []byte("never reached")}
	r := NewRecognizer(Config{}, nil)
	r.runner = stub

	if _, err := r.Recognize(t.Context(), []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
	if stub.gotName != "" {
		t.Fatal("tesseract ran on undecodable input")
	}
}

func TestRecognizeTesseractFailure(t *testing.T) {
	stub := &stubRunner{stderr: []byte("Error opening data file"), err: errors.New("exit status 1")}
	r := NewRecognizer(Config{}, nil)
	r.runner = stub

	if _, err := r.Recognize(t.Context(), tinyPNG(t)); err == nil {
		t.Fatal("expected recognition error")
	}
}

func TestRecognizeStripsBoxNoise(t *testing.T) {
	stub := &stubRunner{stdout: []byte("Jane Doe\n--------\njane@x.io\n")}
	r := NewRecognizer(Config{}, nil)
	r.runner = stub

	got, err := r.Recognize(t.Context(), tinyPNG(t))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if want := "Jane Doe\n\njane@x.io"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs and runs", "a\t\tb   c", "a b c"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces", "a   \nb", "a\nb"},
		{"surrounding whitespace", "  \n a \n ", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
