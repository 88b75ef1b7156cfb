package movie

import (
	"reflect"
	"testing"
)

func ptr(f float64) *float64 { return &f }

// TestProps_SetRouting tests that numbers for visual properties land in the typed
// fields while everything else lands in Extra.
func TestProps_SetRouting(t *testing.T) {
	var p Props

	p.Set(PropX, Number(10))
	if p.X == nil || *p.X != 10 {
		t.Fatalf("Expected X=10, got %v", p.X)
	}
	if len(p.Extra) != 0 {
		t.Errorf("Expected empty Extra, got %v", p.Extra)
	}

	// A visual property given a string moves to Extra and clears the typed field
	p.Set(PropX, String("left"))
	if p.X != nil {
		t.Errorf("Expected X cleared, got %v", *p.X)
	}
	if v, ok := p.Get(PropX); !ok || v != String("left") {
		t.Errorf("Expected x=\"left\", got %v", v)
	}

	p.Set(PropX, Number(3))
	if _, inExtra := p.Extra[PropX]; inExtra {
		t.Error("Expected x removed from Extra after numeric Set")
	}

	p.Set("tint", Bool(true))
	if v, ok := p.Get("tint"); !ok || v != Bool(true) {
		t.Errorf("Expected tint=true, got %v", v)
	}

	p.Set("tint", Value{})
	if p.Has("tint") {
		t.Error("Expected invalid Value to remove the property")
	}
}

// TestProps_Keys tests key ordering: visual properties first, then sorted custom keys.
func TestProps_Keys(t *testing.T) {
	p := Props{
		Rotation: ptr(1),
		X:        ptr(2),
		Extra: map[string]Value{
			"zeta":  Number(1),
			"alpha": String("shadowed"), // typed field is absent, so this one counts
			"beta":  Bool(false),
		},
	}

	got := p.Keys()
	want := []string{PropX, PropRotation, "alpha", "beta", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if p.Len() != 5 {
		t.Errorf("Len() = %d, want 5", p.Len())
	}
}

// TestProps_Clone tests that a clone shares no storage with the original.
func TestProps_Clone(t *testing.T) {
	orig := Props{X: ptr(1), Extra: map[string]Value{"name": String("a")}}
	c := orig.Clone()

	if !c.Equal(orig) {
		t.Fatalf("Expected clone to equal original")
	}

	*c.X = 99
	c.Set("name", String("b"))

	if *orig.X != 1 {
		t.Errorf("Original X mutated through clone: %v", *orig.X)
	}
	if v, _ := orig.Get("name"); v != String("a") {
		t.Errorf("Original Extra mutated through clone: %v", v)
	}
	if c.Equal(orig) {
		t.Error("Expected modified clone to differ")
	}
}

// TestValue_Accessors tests the tagged union accessors.
func TestValue_Accessors(t *testing.T) {
	if f, ok := Number(2.5).Float(); !ok || f != 2.5 {
		t.Errorf("Number.Float() = %v, %v", f, ok)
	}
	if _, ok := String("x").Float(); ok {
		t.Error("String.Float() should report false")
	}
	if s, ok := String("x").Str(); !ok || s != "x" {
		t.Errorf("String.Str() = %v, %v", s, ok)
	}
	if b, ok := Bool(true).BoolValue(); !ok || !b {
		t.Errorf("Bool.BoolValue() = %v, %v", b, ok)
	}
	if (Value{}).IsValid() {
		t.Error("zero Value should be invalid")
	}
	if Number(1).Any() != 1.0 || String("s").Any() != "s" || Bool(false).Any() != false {
		t.Error("Any() returned unexpected values")
	}
	if Number(1) == String("1") {
		t.Error("values of different kinds must not compare equal")
	}
}

// TestElement_Kind tests kind derivation from payloads.
func TestElement_Kind(t *testing.T) {
	tests := []struct {
		payload Payload
		want    Kind
	}{
		{ImagePayload{Source: "a.png"}, KindImage},
		{TextPayload{Content: "hi"}, KindText},
		{AudioPayload{Source: "a.ogg"}, KindAudio},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := (Element{Payload: tt.payload}).Kind(); got != tt.want {
			t.Errorf("Kind() = %q, want %q", got, tt.want)
		}
	}
}

// TestAudioPayload_Window tests window defaults.
func TestAudioPayload_Window(t *testing.T) {
	start, end := AudioPayload{}.Window(200)
	if start != 0 || end != 200 {
		t.Errorf("Expected default window [0, 200), got [%d, %d)", start, end)
	}

	s, e := 10, 20
	start, end = AudioPayload{StartFrame: &s, EndFrame: &e}.Window(200)
	if start != 10 || end != 20 {
		t.Errorf("Expected window [10, 20), got [%d, %d)", start, end)
	}
}
