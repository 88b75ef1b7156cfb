// Package movie provides the data model and loaders for keyframed movie definitions.
// A movie is a fixed-duration timeline of image, text and audio elements, each
// carrying a sparse list of property keyframes.
package movie

import (
	"sort"
	"strconv"
)

// Kind is the element kind discriminant.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
	KindAudio Kind = "audio"
)

// Known visual property names. These are the properties a presentation layer
// applies to a drawable.
const (
	PropX        = "x"
	PropY        = "y"
	PropAlpha    = "alpha"
	PropScaleX   = "scaleX"
	PropScaleY   = "scaleY"
	PropRotation = "rotation"
)

var knownProps = []string{PropX, PropY, PropAlpha, PropScaleX, PropScaleY, PropRotation}

type valueKind uint8

const (
	valueNumber valueKind = iota + 1
	valueString
	valueBool
)

// Value is a single property value: a number, a string or a bool.
// The zero Value is invalid and reports false from every accessor.
type Value struct {
	kind valueKind
	num  float64
	str  string
	b    bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: valueNumber, num: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: valueString, str: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: valueBool, b: b} }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != 0 }

// IsNumber reports whether v is numeric and therefore interpolatable.
func (v Value) IsNumber() bool { return v.kind == valueNumber }

// Float returns the numeric value.
func (v Value) Float() (float64, bool) { return v.num, v.kind == valueNumber }

// Str returns the string value.
func (v Value) Str() (string, bool) { return v.str, v.kind == valueString }

// BoolValue returns the boolean value.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == valueBool }

// Any returns the value as float64, string or bool (nil when invalid).
func (v Value) Any() interface{} {
	switch v.kind {
	case valueNumber:
		return v.num
	case valueString:
		return v.str
	case valueBool:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case valueString:
		return strconv.Quote(v.str)
	case valueBool:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}

// Props is a property snapshot. The visual properties are optional numbers; a nil
// pointer means the property is absent. Custom properties, and any visual property
// given a non-numeric value, live in Extra.
type Props struct {
	X        *float64
	Y        *float64
	Alpha    *float64
	ScaleX   *float64
	ScaleY   *float64
	Rotation *float64

	Extra map[string]Value
}

func (p *Props) field(name string) **float64 {
	switch name {
	case PropX:
		return &p.X
	case PropY:
		return &p.Y
	case PropAlpha:
		return &p.Alpha
	case PropScaleX:
		return &p.ScaleX
	case PropScaleY:
		return &p.ScaleY
	case PropRotation:
		return &p.Rotation
	}
	return nil
}

// Get returns the value of the named property.
func (p Props) Get(name string) (Value, bool) {
	if f := p.field(name); f != nil && *f != nil {
		return Number(**f), true
	}
	v, ok := p.Extra[name]
	return v, ok
}

// Set assigns the named property. Numbers for visual properties go to the typed
// fields; everything else goes to Extra. Setting an invalid Value removes the property.
func (p *Props) Set(name string, v Value) {
	f := p.field(name)
	if f != nil {
		*f = nil
	}
	delete(p.Extra, name)

	if !v.IsValid() {
		return
	}
	if f != nil && v.IsNumber() {
		n := v.num
		*f = &n
		return
	}
	if p.Extra == nil {
		p.Extra = make(map[string]Value)
	}
	p.Extra[name] = v
}

// Has reports whether the named property is present.
func (p Props) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Keys returns the present property names, visual properties first in a fixed
// order, then custom properties sorted by name.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(knownProps)+len(p.Extra))
	for _, name := range knownProps {
		if f := p.field(name); *f != nil {
			keys = append(keys, name)
		}
	}
	extra := make([]string, 0, len(p.Extra))
	for name := range p.Extra {
		if f := p.field(name); f != nil && *f != nil {
			continue
		}
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Len returns the number of present properties.
func (p Props) Len() int {
	return len(p.Keys())
}

// Clone returns a deep copy so the result shares no pointers with p.
func (p Props) Clone() Props {
	var c Props
	for _, name := range knownProps {
		if src := *p.field(name); src != nil {
			v := *src
			*c.field(name) = &v
		}
	}
	if len(p.Extra) > 0 {
		c.Extra = make(map[string]Value, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Equal reports whether both snapshots hold the same properties and values.
func (p Props) Equal(o Props) bool {
	pk, ok := p.Keys(), o.Keys()
	if len(pk) != len(ok) {
		return false
	}
	for i, name := range pk {
		if ok[i] != name {
			return false
		}
		a, _ := p.Get(name)
		b, _ := o.Get(name)
		if a != b {
			return false
		}
	}
	return true
}

// Keyframe is an authored property snapshot pinned to a frame index.
// Frame is the only required field; frames need not be unique or sorted within an element.
type Keyframe struct {
	Frame int
	Props
}

// Payload is the kind-specific part of an element.
type Payload interface {
	Kind() Kind
	isPayload()
}

// ImagePayload references a bitmap asset.
type ImagePayload struct {
	Source string
}

// TextPayload describes a text drawable.
type TextPayload struct {
	Content string
	// Font is an optional font file; empty means the built-in bitmap face.
	Font  string
	Size  float64
	Color string
}

// AudioPayload references a time-bounded media asset.
// A nil StartFrame means 0; a nil EndFrame means the movie duration.
type AudioPayload struct {
	Source     string
	StartFrame *int
	EndFrame   *int
}

func (ImagePayload) Kind() Kind { return KindImage }
func (TextPayload) Kind() Kind  { return KindText }
func (AudioPayload) Kind() Kind { return KindAudio }

func (ImagePayload) isPayload() {}
func (TextPayload) isPayload()  {}
func (AudioPayload) isPayload() {}

// Window returns the [start, end) audio window for a movie of the given duration.
func (a AudioPayload) Window(duration int) (start, end int) {
	start, end = 0, duration
	if a.StartFrame != nil {
		start = *a.StartFrame
	}
	if a.EndFrame != nil {
		end = *a.EndFrame
	}
	return start, end
}

// Element is one animatable unit of a movie.
type Element struct {
	// ID is unique within a movie. Lookups pick the first match when it is not.
	ID      string
	Payload Payload
	// Frames is in insertion order and may be unsorted.
	Frames []Keyframe
}

// Kind returns the element kind derived from its payload.
func (e Element) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Definition is a parsed movie file.
type Definition struct {
	Width    int
	Height   int
	Duration int
	// Loop is nil when the file does not say; callers default it to true.
	Loop     *bool
	FPS      float64
	Elements []Element
}
