package constants

import "testing"

func TestIsImageExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".jpg", true},
		{".JPEG", true},
		{"png", true},
		{".PNG", true},
		{".gif", false},
		{".pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsImageExt(tt.ext); got != tt.want {
			t.Errorf("IsImageExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestNormalizeExt(t *testing.T) {
	if got := NormalizeExt(".JPeG"); got != "jpeg" {
		t.Fatalf("NormalizeExt = %q", got)
	}
	if got := NormalizeExt("png"); got != "png" {
		t.Fatalf("NormalizeExt = %q", got)
	}
}
