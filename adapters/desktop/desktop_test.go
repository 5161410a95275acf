package desktop

import "testing"

func TestSummary(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"Hi Ana,\n\nThe report is ready.", 120, "Hi Ana, The report is ready."},
		{"short", 10, "short"},
		{"abcdefghij", 5, "abcd…"},
		{"olá mundo", 4, "olá…"},
		{"anything", 0, "anything"},
		{"  \n\t ", 10, ""},
	}

	for _, tt := range tests {
		if got := Summary(tt.text, tt.max); got != tt.want {
			t.Errorf("Summary(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}
