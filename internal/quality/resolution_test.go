package quality

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{0, "Unknown"},
		{-5, "Unknown"},
		{3840, "2160p"},
		{4096, "2160p"},
		{3839, "1080p"},
		{1920, "1080p"},
		{1919, "720p"},
		{1280, "720p"},
		{1279, "576p"},
		{1024, "576p"},
		{1023, "480p"},
		{720, "480p"},
		{719, "719p"},
		{640, "640p"},
		{1, "1p"},
	}

	for _, tt := range tests {
		if got := Classify(tt.width); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.width, got, tt.want)
		}
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Tier(Classify(1))
	for w := 2; w <= 5000; w++ {
		cur := Tier(Classify(w))
		if cur < prev {
			t.Fatalf("tier decreased at width %d: %d < %d", w, cur, prev)
		}
		prev = cur
	}
}

func TestTier(t *testing.T) {
	if Tier("2160p") <= Tier("1080p") {
		t.Error("2160p should outrank 1080p")
	}
	if Tier("480p") <= Tier("640p") {
		t.Error("480p bucket should outrank free-form labels")
	}
	if Tier(Unknown) != 0 {
		t.Errorf("Tier(Unknown) = %d, want 0", Tier(Unknown))
	}
}
