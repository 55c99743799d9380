package arith

import (
	"errors"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"18+9", 27},
		{"7-2", 5},
		{"2+3*4", 14},
		{"20/3", 6},
		{"-7/2", -4},
		{"10-2-3", 5},
		{"8*2/4", 4},
		{"-3+10", 7},
		{"42", 42},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr)
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"1/0", ErrDivideByZero},
		{"1+", ErrSyntax},
		{"*3", ErrSyntax},
		{"", ErrSyntax},
		{"1 + 2", ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Eval(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Eval(%q) error = %v, want %v", tt.expr, err, tt.want)
			}
		})
	}
}

func TestIsExpression(t *testing.T) {
	cases := map[string]bool{
		"18+9":         true,
		"2D6-2":        false,
		"10":           false,
		"任意（最低14）": false,
		"7-2":          true,
		"":             false,
	}
	for text, want := range cases {
		if got := IsExpression(text); got != want {
			t.Errorf("IsExpression(%q) = %v, want %v", text, got, want)
		}
	}
}
