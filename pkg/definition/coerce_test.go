package definition

import (
	"testing"
	"time"
)

func TestCoerceNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{name: "float", input: 1.5, want: 1.5, ok: true},
		{name: "int", input: 7, want: 7, ok: true},
		{name: "numeric string", input: " 5 ", want: 5, ok: true},
		{name: "empty string", input: "", ok: false},
		{name: "word", input: "five", ok: false},
		{name: "nan", input: "NaN", ok: false},
		{name: "bool", input: true, ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CoerceNumber(tc.input)
			if ok != tc.ok {
				t.Fatalf("CoerceNumber(%#v) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("CoerceNumber(%#v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCoerceBool(t *testing.T) {
	t.Parallel()

	for input, want := range map[any]bool{true: true, "true": true, "on": true, "0": false, "off": false} {
		got, ok := CoerceBool(input)
		if !ok || got != want {
			t.Fatalf("CoerceBool(%#v) = %v, %v; want %v, true", input, got, ok, want)
		}
	}
	if _, ok := CoerceBool("maybe"); ok {
		t.Fatalf("expected maybe to be rejected")
	}
	if _, ok := CoerceBool(1); ok {
		t.Fatalf("expected numbers to be rejected")
	}
}

func TestCoerceDate(t *testing.T) {
	t.Parallel()

	got, ok := CoerceDate("2024-03-01")
	if !ok {
		t.Fatalf("expected plain date to parse")
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("CoerceDate = %v, want %v", got, want)
	}

	if _, ok := CoerceDate("2024-03-01T10:30:00Z"); !ok {
		t.Fatalf("expected RFC3339 to parse")
	}

	epoch, ok := CoerceDate(float64(0))
	if !ok || !epoch.Equal(time.Unix(0, 0)) {
		t.Fatalf("expected epoch millis to parse, got %v %v", epoch, ok)
	}

	if _, ok := CoerceDate("yesterday"); ok {
		t.Fatalf("expected free text to be rejected")
	}
	if _, ok := CoerceDate(""); ok {
		t.Fatalf("expected empty string to be rejected")
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		op      Operator
		current any
		want    any
		expect  bool
	}{
		{name: "string equals", op: OperatorEquals, current: "x", want: "x", expect: true},
		{name: "string differs", op: OperatorEquals, current: "y", want: "x", expect: false},
		{name: "not equals", op: OperatorNotEquals, current: "y", want: "x", expect: true},
		{name: "bool from string", op: OperatorEquals, current: "true", want: true, expect: true},
		{name: "number from string", op: OperatorEquals, current: "3", want: float64(3), expect: true},
		{name: "int literal", op: OperatorEquals, current: 3.0, want: 3, expect: true},
		{name: "null matches missing", op: OperatorEquals, current: nil, want: nil, expect: true},
		{name: "null matches empty", op: OperatorEquals, current: "", want: nil, expect: true},
		{name: "not null", op: OperatorNotEquals, current: "v", want: nil, expect: true},
		{name: "missing vs empty string", op: OperatorEquals, current: nil, want: "", expect: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Matches(tc.op, tc.current, tc.want); got != tc.expect {
				t.Fatalf("Matches(%s, %#v, %#v) = %v, want %v", tc.op, tc.current, tc.want, got, tc.expect)
			}
		})
	}
}
