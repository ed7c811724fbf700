package key

import (
	"errors"
	"reflect"
	"testing"
)

func TestEventNotation(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('a', ModNone), "a"},
		{NewRuneEvent('A', ModShift), "A"},
		{NewRuneEvent(' ', ModNone), " "},
		{NewRuneEvent('<', ModNone), "<lt>"},
		{NewRuneEvent('r', ModCtrl), "<C-r>"},
		{NewRuneEvent('c', ModMeta), "<D-c>"},
		{NewSpecialEvent(KeyEscape, ModNone), "<Esc>"},
		{NewSpecialEvent(KeyEnter, ModNone), "<CR>"},
		{NewSpecialEvent(KeyBackspace, ModNone), "<BS>"},
		{NewSpecialEvent(KeyTab, ModShift), "<S-Tab>"},
		{NewSpecialEvent(KeyF5, ModNone), "<F5>"},
	}
	for _, tt := range tests {
		if got := tt.event.Notation(); got != tt.want {
			t.Errorf("Notation() = %q, want %q", got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"<c-R>", "<C-r>"},
		{"Ctrl+S", "<C-s>"},
		{"<Enter>", "<CR>"},
		{"<Space>", " "},
		{"<lt>", "<lt>"},
		{"x", "x"},
		{TimeoutFinished, TimeoutFinished},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.spec)
		if err != nil {
			t.Errorf("Normalize(%q) error: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("expected ErrEmptySpec, got %v", err)
	}
	if _, err := Parse("<X-a>"); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
	if _, err := Parse("nonsense"); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"d2w", []string{"d", "2", "w"}},
		{"ia<Esc>", []string{"i", "a", "<Esc>"}},
		{"<C-r>u", []string{"<C-r>", "u"}},
		{"a<b", []string{"a", "<lt>", "b"}},
		{"i<lt>", []string{"i", "<lt>"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Split(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) > 0 && Join(got) != tt.in && tt.in != "a<b" {
			t.Errorf("Join(Split(%q)) = %q", tt.in, Join(got))
		}
	}
}

func TestIsCharacter(t *testing.T) {
	for _, k := range []string{"a", "0", " ", "é", "<lt>"} {
		if !IsCharacter(k) {
			t.Errorf("expected %q to be a character key", k)
		}
	}
	for _, k := range []string{"<Esc>", "<C-r>", "", TimeoutFinished} {
		if IsCharacter(k) {
			t.Errorf("expected %q not to be a character key", k)
		}
	}
}

func TestAlias(t *testing.T) {
	linux := AliasOptions{OverrideCopy: true, UseCtrlKeys: true}
	if got := Alias(MetaC, linux, false); got != Copy {
		t.Errorf("<D-c> should alias to copy, got %q", got)
	}
	if got := Alias(CtrlC, linux, false); got != CtrlC {
		t.Errorf("<C-c> outside visual with ctrl keys should stay, got %q", got)
	}
	if got := Alias(CtrlC, linux, true); got != Copy {
		t.Errorf("<C-c> in visual should alias to copy, got %q", got)
	}

	mac := AliasOptions{Darwin: true, OverrideCopy: true}
	if got := Alias(CtrlC, mac, true); got != CtrlC {
		t.Errorf("<C-c> on darwin should stay, got %q", got)
	}

	noCtrl := AliasOptions{OverrideCopy: true}
	if got := Alias(CtrlD, noCtrl, false); got != MetaD {
		t.Errorf("<C-d> without ctrl keys should alias to <D-d>, got %q", got)
	}
}
