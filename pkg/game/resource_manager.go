package game

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decker502/keyreel/internal/au"
	"github.com/decker502/keyreel/pkg/embedded"
	"github.com/h2non/filetype"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/sync/errgroup"
)

// Audio container formats recognised by LoadAudio.
const (
	AudioFormatMP3 = "mp3"
	AudioFormatOGG = "ogg"
	AudioFormatWAV = "wav"
	AudioFormatAU  = "au"
)

// DefaultPreloadWorkers bounds the number of concurrent decodes in PreloadImages.
const DefaultPreloadWorkers = 4

// ResourceManager loads and caches the assets referenced by a movie:
// bitmaps for image elements, font faces for text elements and
// non-looping audio players for audio elements.
//
// Relative paths are resolved against the asset root. Paths under "data/"
// are read from the embedded filesystem first when it has been initialised.
//
// Image decoding may run on several goroutines (PreloadImages); the caches
// are guarded by a mutex. Ebitengine images are always created on the
// calling goroutine.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext, "assets")
//	img, err := rm.LoadImage("logo.png")
//	if err != nil {
//	    log.Printf("Failed to load image: %v", err)
//	}
type ResourceManager struct {
	mu sync.Mutex

	root          string                      // Asset root for relative paths
	imageCache    map[string]*ebiten.Image    // Cache for loaded images: path -> Image
	audioCache    map[string][]byte           // Cache for raw audio files: path -> bytes
	audioContext  *audio.Context              // Global audio context, may be nil (no audio output)
	fontFaceCache map[string]*text.GoTextFace // Cache for Ebitengine v2 text faces
	fallbackFace  text.Face                   // Built-in bitmap face
}

// NewResourceManager creates a ResourceManager with empty caches.
// audioContext may be nil, in which case LoadAudio always fails.
func NewResourceManager(audioContext *audio.Context, root string) *ResourceManager {
	return &ResourceManager{
		root:          root,
		imageCache:    make(map[string]*ebiten.Image),
		audioCache:    make(map[string][]byte),
		audioContext:  audioContext,
		fontFaceCache: make(map[string]*text.GoTextFace),
		fallbackFace:  text.NewGoXFace(basicfont.Face7x13),
	}
}

// Root returns the asset root.
func (rm *ResourceManager) Root() string {
	return rm.root
}

func (rm *ResourceManager) resolve(path string) string {
	if rm.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rm.root, path)
}

// readFile reads an asset, preferring the embedded filesystem for "data/" paths.
func (rm *ResourceManager) readFile(path string) ([]byte, error) {
	if embedded.IsInitialized() && strings.HasPrefix(filepath.ToSlash(path), "data/") && embedded.Exists(path) {
		return embedded.ReadFile(path)
	}
	data, err := os.ReadFile(rm.resolve(path))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// decodeImage sniffs and decodes bitmap data.
func decodeImage(path string, data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%s is not an image (detected %s)", path, kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// LoadImage loads an image and caches it.
// If the image has already been loaded, it returns the cached version.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	if cachedImage := rm.GetImage(path); cachedImage != nil {
		return cachedImage, nil
	}

	data, err := rm.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	img, err := decodeImage(path, data)
	if err != nil {
		return nil, err
	}

	ebitenImg := ebiten.NewImageFromImage(img)

	rm.mu.Lock()
	rm.imageCache[path] = ebitenImg
	rm.mu.Unlock()

	return ebitenImg, nil
}

// GetImage retrieves a previously loaded image from the cache, or nil.
func (rm *ResourceManager) GetImage(path string) *ebiten.Image {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.imageCache[path]
}

// PreloadImages reads and decodes paths concurrently with at most workers
// goroutines, then uploads them to the cache. A failing path does not stop
// the others; every failure is joined into the returned error.
func (rm *ResourceManager) PreloadImages(ctx context.Context, paths []string, workers int) error {
	if workers <= 0 {
		workers = DefaultPreloadWorkers
	}

	decoded := make([]image.Image, len(paths))
	failures := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		if rm.GetImage(path) != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures[i] = fmt.Errorf("preload of %s cancelled: %w", path, err)
				return nil
			}
			data, err := rm.readFile(path)
			if err != nil {
				failures[i] = fmt.Errorf("failed to open image file %s: %w", path, err)
				return nil
			}
			img, err := decodeImage(path, data)
			if err != nil {
				failures[i] = err
				return nil
			}
			decoded[i] = img
			return nil
		})
	}
	_ = g.Wait()

	loaded := 0
	for i, img := range decoded {
		if img == nil {
			continue
		}
		rm.mu.Lock()
		rm.imageCache[paths[i]] = ebiten.NewImageFromImage(img)
		rm.mu.Unlock()
		loaded++
	}
	log.Printf("[ResourceManager] Preloaded %d/%d images", loaded, len(paths))

	if err := errors.Join(failures...); err != nil {
		return fmt.Errorf("preload failed: %w", err)
	}
	return nil
}

// DetectAudioFormat identifies the container of data by its magic bytes,
// falling back to the file extension when sniffing is inconclusive.
func DetectAudioFormat(path string, data []byte) (string, error) {
	if au.IsAU(data) {
		return AudioFormatAU, nil
	}
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case "mp3":
		return AudioFormatMP3, nil
	case "ogg":
		return AudioFormatOGG, nil
	case "wav":
		return AudioFormatWAV, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return AudioFormatMP3, nil
	case ".ogg":
		return AudioFormatOGG, nil
	case ".wav":
		return AudioFormatWAV, nil
	case ".au":
		return AudioFormatAU, nil
	default:
		return "", fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .wav, .au)", ext)
	}
}

// LoadAudio loads an audio file and returns a new non-looping player for it.
// The audio window scheduler decides when it plays, so the stream is never
// wrapped in an infinite loop.
//
// The file bytes are cached per path, but every call creates its own player:
// two elements sharing a source each get an independent playback position.
func (rm *ResourceManager) LoadAudio(path string) (*audio.Player, error) {
	if rm.audioContext == nil {
		return nil, fmt.Errorf("no audio context for %s", path)
	}

	audioData, err := rm.audioBytes(path)
	if err != nil {
		return nil, err
	}

	format, err := DetectAudioFormat(path, audioData)
	if err != nil {
		return nil, err
	}

	reader := bytes.NewReader(audioData)
	var stream io.ReadSeeker
	switch format {
	case AudioFormatMP3:
		s, err := mp3.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", path, err)
		}
		stream = s
	case AudioFormatOGG:
		s, err := vorbis.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", path, err)
		}
		stream = s
	case AudioFormatWAV:
		s, err := wav.DecodeWithoutResampling(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", path, err)
		}
		stream = s
	case AudioFormatAU:
		s, err := au.Decode(audioData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode AU audio %s: %w", path, err)
		}
		stream = s
		if rate := rm.audioContext.SampleRate(); s.SampleRate() != rate {
			stream = audio.Resample(s, s.Length(), s.SampleRate(), rate)
		}
	}

	player, err := rm.audioContext.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", path, err)
	}

	rm.mu.Lock()
	rm.audioCache[path] = audioData
	rm.mu.Unlock()

	return player, nil
}

// audioBytes reads the entire file into memory so each stream can seek freely.
func (rm *ResourceManager) audioBytes(path string) ([]byte, error) {
	rm.mu.Lock()
	data, ok := rm.audioCache[path]
	rm.mu.Unlock()
	if ok {
		return data, nil
	}

	data, err := rm.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file %s: %w", path, err)
	}
	return data, nil
}

// IsAudioCached reports whether the file at path decoded successfully before.
func (rm *ResourceManager) IsAudioCached(path string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok := rm.audioCache[path]
	return ok
}

// LoadFont loads a TrueType/OpenType font and creates a face of the given size.
// The face is cached per (path, size).
func (rm *ResourceManager) LoadFont(path string, size float64) (*text.GoTextFace, error) {
	cacheKey := fmt.Sprintf("%s:%.1f", path, size)

	rm.mu.Lock()
	cachedFace, exists := rm.fontFaceCache[cacheKey]
	rm.mu.Unlock()
	if exists {
		return cachedFace, nil
	}

	fontData, err := rm.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file %s: %w", path, err)
	}

	source, err := text.NewGoTextFaceSource(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source for %s: %w", path, err)
	}

	goTextFace := &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}

	rm.mu.Lock()
	rm.fontFaceCache[cacheKey] = goTextFace
	rm.mu.Unlock()

	return goTextFace, nil
}

// FontFace returns a face for a text element. An empty path, a non-positive
// size or a font that fails to load yields the built-in bitmap face.
func (rm *ResourceManager) FontFace(path string, size float64) text.Face {
	if path == "" || size <= 0 {
		return rm.fallbackFace
	}
	face, err := rm.LoadFont(path, size)
	if err != nil {
		log.Printf("[ResourceManager] Warning: %v (using built-in face)", err)
		return rm.fallbackFace
	}
	return face
}

// FallbackFace returns the built-in bitmap face.
func (rm *ResourceManager) FallbackFace() text.Face {
	return rm.fallbackFace
}
