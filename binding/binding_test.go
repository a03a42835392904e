package binding

import (
	"encoding/json"
	"testing"
)

func TestInterpolate(t *testing.T) {
	var data any
	if err := json.Unmarshal([]byte(`{"user":{"name":"Ada","tags":["x","y"]},"count":1000000}`), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cases := map[string]string{
		"Hi ${user.name}!":          "Hi Ada!",
		"${user.tags[1]}":           "y",
		"${count}":                  "1000000",
		"${user.missing}":           "${user.missing}",
		"${user.missing|friend}":    "friend",
		"${user.tags[9] | none}":    "none",
		"no placeholders":           "no placeholders",
		"${ user.name }+${user.name}": "Ada+Ada",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Fatalf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a|b} ${c}", nil); got != "b ${c}" {
		t.Fatalf("unexpected: %q", got)
	}
}
