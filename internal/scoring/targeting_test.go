package scoring

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pune", "pune"},
		{"  PUNE  ", "pune"},
		{"New   Delhi", "new delhi"},
		{"\tNavi  Mumbai\n", "navi mumbai"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchesTarget(t *testing.T) {
	cases := []struct {
		name    string
		targets []string
		value   string
		want    bool
	}{
		{"empty targets admit anything", nil, "Pune", true},
		{"empty targets admit empty value", nil, "", true},
		{"exact match", []string{"Pune"}, "Pune", true},
		{"case-insensitive match", []string{"pune"}, "PUNE", true},
		{"whitespace-insensitive match", []string{" New  Delhi "}, "new delhi", true},
		{"no match", []string{"Pune", "Mumbai"}, "Jaipur", false},
		{"empty value vs non-empty targets", []string{"Pune"}, "", false},
		{"blank value vs non-empty targets", []string{"Pune"}, "   ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesTarget(tc.targets, tc.value); got != tc.want {
				t.Fatalf("MatchesTarget(%v, %q) = %v, want %v", tc.targets, tc.value, got, tc.want)
			}
		})
	}
}
