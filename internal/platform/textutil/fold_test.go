package textutil

import "testing"

func TestFoldForSearch(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"José da Silva", "jose da silva"},
		{"  SÃO PAULO ", "sao paulo"},
		{"Açaí", "acai"},
		{"caneca", "caneca"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FoldForSearch(tc.in); got != tc.want {
			t.Errorf("FoldForSearch(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(11) 98765-4321", "11987654321"},
		{"01310-100", "01310100"},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := Digits(tc.in); got != tc.want {
			t.Errorf("Digits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
