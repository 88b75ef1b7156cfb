package movie

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format is a movie file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFromPath picks the encoding from the file extension (.toml, otherwise YAML).
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// rawDefinition mirrors the file layout before payloads and keyframes are typed.
type rawDefinition struct {
	Width    int          `yaml:"width" toml:"width"`
	Height   int          `yaml:"height" toml:"height"`
	Duration int          `yaml:"duration" toml:"duration"`
	Loop     *bool        `yaml:"loop" toml:"loop"`
	FPS      float64      `yaml:"fps" toml:"fps"`
	Elements []rawElement `yaml:"elements" toml:"elements"`
}

type rawElement struct {
	ID   string `yaml:"id" toml:"id"`
	Kind string `yaml:"kind" toml:"kind"`

	// image / audio
	Src string `yaml:"src" toml:"src"`

	// text
	Content string  `yaml:"content" toml:"content"`
	Font    string  `yaml:"font" toml:"font"`
	Size    float64 `yaml:"size" toml:"size"`
	Color   string  `yaml:"color" toml:"color"`

	// audio
	StartFrame *int `yaml:"startFrame" toml:"startFrame"`
	EndFrame   *int `yaml:"endFrame" toml:"endFrame"`

	Frames []map[string]interface{} `yaml:"frames" toml:"frames"`
}

// ParseFile reads and parses a movie definition file.
//
// Example:
//
//	def, err := movie.ParseFile("data/movies/demo.yaml")
//	if err != nil {
//	    log.Fatalf("Failed to load movie: %v", err)
//	}
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read movie file '%s': %w", path, err)
	}

	def, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse movie file '%s': %w", path, err)
	}
	return def, nil
}

// Parse decodes a movie definition from data.
//
// Keyframe data is tolerated rather than rejected: a missing or non-numeric frame
// index becomes 0 and unsupported property values are dropped, both with a warning.
// Structural problems (unknown element kind, negative duration) are errors.
func Parse(data []byte, format Format) (*Definition, error) {
	var raw rawDefinition
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	}

	if raw.Duration < 0 {
		return nil, fmt.Errorf("duration must be >= 0, got %d", raw.Duration)
	}

	def := &Definition{
		Width:    raw.Width,
		Height:   raw.Height,
		Duration: raw.Duration,
		Loop:     raw.Loop,
		FPS:      raw.FPS,
		Elements: make([]Element, 0, len(raw.Elements)),
	}

	for i, re := range raw.Elements {
		el, err := re.toElement(i)
		if err != nil {
			return nil, fmt.Errorf("element #%d: %w", i, err)
		}
		def.Elements = append(def.Elements, el)
	}

	return def, nil
}

func (re rawElement) toElement(index int) (Element, error) {
	var payload Payload
	switch Kind(strings.ToLower(re.Kind)) {
	case KindImage:
		payload = ImagePayload{Source: re.Src}
	case KindText:
		payload = TextPayload{Content: re.Content, Font: re.Font, Size: re.Size, Color: re.Color}
	case KindAudio:
		payload = AudioPayload{Source: re.Src, StartFrame: re.StartFrame, EndFrame: re.EndFrame}
	case "":
		return Element{}, fmt.Errorf("missing 'kind' field")
	default:
		return Element{}, fmt.Errorf("unknown kind '%s' (supported: image, text, audio)", re.Kind)
	}

	id := re.ID
	if id == "" {
		id = anonymousID(payload.Kind(), index)
		log.Printf("[movie] Element #%d has no id, assigned %s", index, id)
	}

	el := Element{
		ID:      id,
		Payload: payload,
		Frames:  make([]Keyframe, 0, len(re.Frames)),
	}
	for j, rf := range re.Frames {
		el.Frames = append(el.Frames, toKeyframe(id, j, rf))
	}
	return el, nil
}

// anonymousID derives a stable id from the element position so reloading the
// same file yields the same ids.
func anonymousID(kind Kind, index int) string {
	name := fmt.Sprintf("movie://element/%s/%d", kind, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func toKeyframe(elementID string, index int, raw map[string]interface{}) Keyframe {
	var kf Keyframe

	if f, ok := toNumber(raw["frame"]); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		kf.Frame = int(math.Floor(f))
	} else {
		log.Printf("[movie] Warning: %s keyframe #%d has no numeric 'frame' (%v), using 0", elementID, index, raw["frame"])
	}

	for name, rv := range raw {
		if name == "frame" {
			continue
		}
		v, ok := toValue(rv)
		if !ok {
			log.Printf("[movie] Warning: %s keyframe #%d property '%s' has unsupported value %v, dropped", elementID, index, name, rv)
			continue
		}
		kf.Set(name, v)
	}
	return kf
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func toValue(v interface{}) (Value, bool) {
	if f, ok := toNumber(v); ok {
		return Number(f), true
	}
	switch t := v.(type) {
	case string:
		return String(t), true
	case bool:
		return Bool(t), true
	}
	return Value{}, false
}
