package game

import (
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Global audio context shared by all tests
// Ebitengine only allows one audio context to be created
var testAudioContext *audio.Context

// TestMain sets up the shared audio context before running tests
func TestMain(m *testing.M) {
	testAudioContext = audio.NewContext(48000)
	os.Exit(m.Run())
}

// createTestImage creates a simple 10x10 blue PNG.
func createTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, blue)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
}

// TestLoadImage_Success 相对路径按资源根目录解析
func TestLoadImage_Success(t *testing.T) {
	root := t.TempDir()
	createTestImage(t, filepath.Join(root, "images", "logo.png"))

	rm := NewResourceManager(testAudioContext, root)
	img, err := rm.LoadImage("images/logo.png")
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 10 || bounds.Dy() != 10 {
		t.Errorf("Image dimensions incorrect: got %dx%d, want 10x10", bounds.Dx(), bounds.Dy())
	}

	again, err := rm.LoadImage("images/logo.png")
	if err != nil || again != img {
		t.Error("Images are not cached - different instances returned")
	}
	if rm.GetImage("images/logo.png") != img {
		t.Error("GetImage returned different instance than LoadImage")
	}
}

// TestLoadImage_Errors 文件不存在和非图片内容都返回错误
func TestLoadImage_Errors(t *testing.T) {
	root := t.TempDir()
	rm := NewResourceManager(testAudioContext, root)

	if _, err := rm.LoadImage("nonexistent.png"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}

	if err := os.WriteFile(filepath.Join(root, "fake.png"), []byte("not a valid png"), 0644); err != nil {
		t.Fatalf("Failed to create invalid file: %v", err)
	}
	if _, err := rm.LoadImage("fake.png"); err == nil {
		t.Error("Expected error for data that is not an image, got nil")
	}
	if rm.GetImage("fake.png") != nil {
		t.Error("Failed load must not be cached")
	}
}

// TestPreloadImages 并发预加载，失败时已解码的图片仍然缓存
func TestPreloadImages(t *testing.T) {
	root := t.TempDir()
	paths := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
	for _, p := range paths {
		createTestImage(t, filepath.Join(root, p))
	}

	rm := NewResourceManager(testAudioContext, root)
	if err := rm.PreloadImages(context.Background(), paths, 2); err != nil {
		t.Fatalf("PreloadImages failed: %v", err)
	}
	for _, p := range paths {
		if rm.GetImage(p) == nil {
			t.Errorf("Expected %s cached after preload", p)
		}
	}

	rm2 := NewResourceManager(testAudioContext, root)
	err := rm2.PreloadImages(context.Background(), []string{"a.png", "missing.png"}, 1)
	if err == nil {
		t.Fatal("Expected preload error for a missing file")
	}
	if rm2.GetImage("a.png") == nil {
		t.Error("Images decoded before the failure should stay cached")
	}
}

// TestPreloadImages_FailureDoesNotStopOthers 第一个文件失败时，后续排队的图片仍然解码
func TestPreloadImages_FailureDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	createTestImage(t, filepath.Join(root, "a.png"))
	createTestImage(t, filepath.Join(root, "b.png"))
	if err := os.WriteFile(filepath.Join(root, "bad.png"), []byte("not a valid png"), 0644); err != nil {
		t.Fatalf("Failed to create invalid file: %v", err)
	}

	rm := NewResourceManager(testAudioContext, root)
	err := rm.PreloadImages(context.Background(), []string{"missing.png", "a.png", "bad.png", "b.png"}, 1)
	if err == nil {
		t.Fatal("Expected preload error")
	}
	for _, want := range []string{"missing.png", "bad.png"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}
	for _, p := range []string{"a.png", "b.png"} {
		if rm.GetImage(p) == nil {
			t.Errorf("Expected %s cached despite earlier failures", p)
		}
	}
}

// TestDetectAudioFormat 优先按文件头识别，否则按扩展名
func TestDetectAudioFormat(t *testing.T) {
	wavHeader := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 16)...)

	tests := []struct {
		name    string
		path    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"ogg magic", "track.bin", append([]byte("OggS"), make([]byte, 32)...), AudioFormatOGG, false},
		{"mp3 id3 magic", "track.bin", append([]byte("ID3\x03\x00"), make([]byte, 32)...), AudioFormatMP3, false},
		{"wav magic", "track.bin", wavHeader, AudioFormatWAV, false},
		{"au magic", "track.bin", append([]byte(".snd"), make([]byte, 32)...), AudioFormatAU, false},
		{"extension fallback", "voice.OGG", []byte("????"), AudioFormatOGG, false},
		{"unsupported", "voice.flac", []byte("????"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectAudioFormat(tt.path, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectAudioFormat error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectAudioFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

// testAU builds a mono μ-law .au file of n samples.
func testAU(rate uint32, n int) []byte {
	h := make([]byte, 24, 24+n)
	binary.BigEndian.PutUint32(h[0:], 0x2e736e64)
	binary.BigEndian.PutUint32(h[4:], 24)
	binary.BigEndian.PutUint32(h[8:], uint32(n))
	binary.BigEndian.PutUint32(h[12:], 1)
	binary.BigEndian.PutUint32(h[16:], rate)
	binary.BigEndian.PutUint32(h[20:], 1)
	for i := 0; i < n; i++ {
		h = append(h, byte(i))
	}
	return h
}

// TestLoadAudio 音频加载失败的各种情况，以及 .au 重采样加载
func TestLoadAudio(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "broken.wav"), []byte("dummy data"), 0644); err != nil {
		t.Fatalf("Failed to create dummy file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "tone.au"), testAU(8000, 800), 0644); err != nil {
		t.Fatalf("Failed to create AU file: %v", err)
	}

	rm := NewResourceManager(testAudioContext, root)
	if _, err := rm.LoadAudio("nonexistent.mp3"); err == nil {
		t.Error("Expected error for non-existent audio file, got nil")
	}
	if _, err := rm.LoadAudio("broken.wav"); err == nil {
		t.Error("Expected decode error for corrupt audio, got nil")
	}
	if rm.IsAudioCached("broken.wav") {
		t.Error("A failed load must not be cached")
	}

	if _, err := rm.LoadAudio("tone.au"); err != nil {
		t.Fatalf("LoadAudio(tone.au) failed: %v", err)
	}
	if !rm.IsAudioCached("tone.au") {
		t.Error("Expected AU data cached")
	}

	silent := NewResourceManager(nil, root)
	if _, err := silent.LoadAudio("broken.wav"); err == nil {
		t.Error("Expected error without an audio context")
	}
}

// TestLoadAudio_PlayerPerCall 同一音源的多个元素各自拥有独立的播放器
func TestLoadAudio_PlayerPerCall(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "tone.au"), testAU(48000, 4800), 0644); err != nil {
		t.Fatalf("Failed to create AU file: %v", err)
	}

	rm := NewResourceManager(testAudioContext, root)
	first, err := rm.LoadAudio("tone.au")
	if err != nil {
		t.Fatalf("LoadAudio failed: %v", err)
	}
	second, err := rm.LoadAudio("tone.au")
	if err != nil {
		t.Fatalf("Second LoadAudio failed: %v", err)
	}
	if first == second {
		t.Fatal("Expected a distinct player per call")
	}
	if !rm.IsAudioCached("tone.au") {
		t.Error("Expected file bytes cached across players")
	}
}

// TestFontFace_Fallback 未指定字体或加载失败时使用内置位图字体
func TestFontFace_Fallback(t *testing.T) {
	rm := NewResourceManager(testAudioContext, t.TempDir())

	if rm.FontFace("", 24) != rm.FallbackFace() {
		t.Error("Expected fallback face for empty font path")
	}
	if rm.FontFace("missing.ttf", 24) != rm.FallbackFace() {
		t.Error("Expected fallback face for a missing font")
	}
	if _, ok := rm.FallbackFace().(*text.GoXFace); !ok {
		t.Errorf("Expected GoXFace fallback, got %T", rm.FallbackFace())
	}
}
