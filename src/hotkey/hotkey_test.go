package hotkey

import (
	"reflect"
	"testing"
)

func TestParseCombo(t *testing.T) {
	cases := []struct {
		combo string
		want  []string
	}{
		{"Ctrl+Space", []string{"ctrl", "space"}},
		{"ctrl + shift + p", []string{"ctrl", "shift", "p"}},
		{"Win+V", []string{"cmd", "v"}},
		{"Super+Enter", []string{"cmd", "enter"}},
		{"F5", []string{"f5"}},
		{"", nil},
		{"+", nil},
	}
	for _, c := range cases {
		got := parseCombo(c.combo)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseCombo(%q) = %v, want %v", c.combo, got, c.want)
		}
	}
}

func TestRawcodesForModifiers(t *testing.T) {
	cases := map[string][]uint16{
		"ctrl":  {162, 163},
		"alt":   {164, 165},
		"shift": {160, 161},
		"cmd":   {91, 92},
	}
	for name, want := range cases {
		if got := rawcodesFor(name); !reflect.DeepEqual(got, want) {
			t.Errorf("rawcodesFor(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRawcodesForLettersDigitsFunctionKeys(t *testing.T) {
	cases := map[string]uint16{
		"a":     65,
		"z":     90,
		"0":     48,
		"9":     57,
		"f1":    112,
		"f12":   123,
		"f24":   135,
		"space": 32,
		"esc":   27,
	}
	for name, want := range cases {
		got := rawcodesFor(name)
		if len(got) != 1 || got[0] != want {
			t.Errorf("rawcodesFor(%q) = %v, want [%d]", name, got, want)
		}
	}
}

func TestRawcodesForUnknown(t *testing.T) {
	for _, name := range []string{"f0", "f25", "hyper", "ab", ""} {
		if got := rawcodesFor(name); got != nil {
			t.Errorf("rawcodesFor(%q) = %v, want nil", name, got)
		}
	}
}
