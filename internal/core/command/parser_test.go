package command

import "testing"

var checkGrammar = Grammar{
	Token:        "CH",
	DefaultCount: 3,
	CountPrefix:  true,
	Operators:    []Operator{OpGreaterEqual},
}

func TestParse(t *testing.T) {
	parser := MustCompile(checkGrammar)

	tests := []struct {
		input     string
		wantOK    bool
		count     int
		modifier  int
		judged    bool
		target    int
		normalize string
	}{
		{input: "CH", wantOK: true, count: 3, normalize: "3CH"},
		{input: "ch+1", wantOK: true, count: 3, modifier: 1, normalize: "3CH+1"},
		{input: "CH+2>=10", wantOK: true, count: 3, modifier: 2, judged: true, target: 10, normalize: "3CH+2>=10"},
		{input: "4CH-1>=12", wantOK: true, count: 4, modifier: -1, judged: true, target: 12, normalize: "4CH-1>=12"},
		{input: "CH+1+2-1", wantOK: true, count: 3, modifier: 2, normalize: "3CH+2"},
		{input: "CH+1-1>=9", wantOK: true, count: 3, judged: true, target: 9, normalize: "3CH>=9"},
		{input: "0CH", wantOK: true, count: 0, normalize: "0CH"},
		{input: "CH>10", wantOK: false},
		{input: "CH<=10", wantOK: false},
		{input: "CH>=?", wantOK: false},
		{input: "CH>=", wantOK: false},
		{input: "XCH", wantOK: false},
		{input: "CHX", wantOK: false},
		{input: "101CH", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, ok := parser.Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if req.Count != tt.count {
				t.Errorf("Count = %d, want %d", req.Count, tt.count)
			}
			if req.Modifier != tt.modifier {
				t.Errorf("Modifier = %d, want %d", req.Modifier, tt.modifier)
			}
			if req.Judged() != tt.judged {
				t.Errorf("Judged = %v, want %v", req.Judged(), tt.judged)
			}
			if tt.judged && req.Target != tt.target {
				t.Errorf("Target = %d, want %d", req.Target, tt.target)
			}
			if got := req.String(); got != tt.normalize {
				t.Errorf("String() = %q, want %q", got, tt.normalize)
			}
		})
	}
}

func TestParse_FixedCountAndWildcard(t *testing.T) {
	parser := MustCompile(Grammar{
		Token:         "G",
		EchoToken:     "2D6",
		DefaultCount:  2,
		Operators:     []Operator{OpGreaterEqual},
		AllowWildcard: true,
	})

	req, ok := parser.Parse("G>=?")
	if !ok {
		t.Fatal("expected wildcard target to parse")
	}
	if !req.Wildcard || req.Judged() {
		t.Fatalf("expected unjudged wildcard request, got %+v", req)
	}
	if got := req.String(); got != "2D6>=?" {
		t.Fatalf("String() = %q, want %q", got, "2D6>=?")
	}

	if _, ok := parser.Parse("3G>=7"); ok {
		t.Fatal("expected count prefix to be rejected")
	}
	req, ok = parser.Parse("G+1>=7")
	if !ok || req.Count != 2 || req.Modifier != 1 || req.Target != 7 {
		t.Fatalf("unexpected request %+v ok=%v", req, ok)
	}
}

func TestCompileRequiresToken(t *testing.T) {
	if _, err := Compile(Grammar{}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := Compile(Grammar{Token: "CH", DefaultCount: -1}); err == nil {
		t.Fatal("expected error for negative default count")
	}
}

func TestModifier(t *testing.T) {
	cases := map[int]string{0: "", 3: "+3", -2: "-2"}
	for value, want := range cases {
		if got := Modifier(value); got != want {
			t.Errorf("Modifier(%d) = %q, want %q", value, got, want)
		}
	}
}
