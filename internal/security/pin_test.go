package security

import "testing"

func TestPINEqual(t *testing.T) {
	cases := []struct {
		name      string
		submitted string
		stored    string
		want      bool
	}{
		{"match", "4821", "4821", true},
		{"mismatch", "4821", "4822", false},
		{"different length", "482", "4821", false},
		{"both empty", "", "", true},
		{"empty submitted", "", "4821", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PINEqual(tc.submitted, tc.stored); got != tc.want {
				t.Errorf("PINEqual(%q, %q) = %v, want %v", tc.submitted, tc.stored, got, tc.want)
			}
		})
	}
}
