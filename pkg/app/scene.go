package app

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/keyreel/internal/movie"
	"github.com/decker502/keyreel/pkg/components"
	"github.com/decker502/keyreel/pkg/ecs"
	"github.com/decker502/keyreel/pkg/game"
	"github.com/decker502/keyreel/pkg/systems"
	"github.com/decker502/keyreel/pkg/timeline"
	"github.com/lucasb-eyer/go-colorful"
)

// sceneLoader 为影片的每个元素创建实体并加载资源
// 资源加载失败不是致命错误：图片缺失时不绘制，音频缺失时窗口无操作
type sceneLoader struct {
	movie     *timeline.Movie
	em        *ecs.EntityManager
	presenter *systems.PresentationSystem
	resources *game.ResourceManager
	settings  *game.SettingsManager
	diag      timeline.Diagnostics
	workers   int
}

func (l *sceneLoader) load(ctx context.Context) {
	var images []string
	for _, el := range l.movie.Elements() {
		if p, ok := el.Payload.(movie.ImagePayload); ok && p.Source != "" {
			images = append(images, p.Source)
		}
	}
	if err := l.resources.PreloadImages(ctx, images, l.workers); err != nil {
		log.Printf("[App] Warning: %v", err)
	}

	windows := make(map[string]*timeline.AudioWindow)
	for _, w := range l.movie.AudioWindows() {
		windows[w.ElementID] = w
	}

	for _, el := range l.movie.Elements() {
		id, unique := l.presenter.Register(el.ID, el.Kind())

		switch p := el.Payload.(type) {
		case movie.ImagePayload:
			img := l.resources.GetImage(p.Source)
			if img == nil {
				log.Printf("[App] Warning: image '%s' for element '%s' is not loaded", p.Source, el.ID)
			}
			ecs.AddComponent(l.em, id, &components.SpriteComponent{Source: p.Source, Image: img})

		case movie.TextPayload:
			ecs.AddComponent(l.em, id, &components.TextComponent{
				Content: p.Content,
				Face:    l.resources.FontFace(p.Font, p.Size),
				Color:   parseColor(p.Color),
			})

		case movie.AudioPayload:
			if !unique {
				// 窗口属于同 ID 的第一个元素
				ecs.AddComponent(l.em, id, &components.AudioComponent{Source: p.Source})
				continue
			}
			ac := &components.AudioComponent{Source: p.Source, Window: windows[el.ID]}
			ecs.AddComponent(l.em, id, ac)
			if ac.Window == nil {
				continue
			}
			player, err := l.resources.LoadAudio(p.Source)
			if err != nil {
				l.reportMedia(el.ID, err)
				continue
			}
			l.settings.ApplyVolume(player)
			if err := l.movie.AttachAudio(el.ID, player); err != nil {
				l.reportMedia(el.ID, err)
				continue
			}
			ac.Player = player
		}
	}
	log.Printf("[App] Scene loaded: %d entities", l.em.EntityCount())
}

func (l *sceneLoader) reportMedia(elementID string, err error) {
	if l.diag != nil {
		l.diag.MediaError(elementID, err)
		return
	}
	log.Printf("[App] Warning: audio '%s': %v", elementID, err)
}

// parseColor 解析 "#rrggbb" 形式的颜色，空值或无效值为白色
func parseColor(s string) color.Color {
	if s == "" {
		return color.White
	}
	c, err := colorful.Hex(s)
	if err != nil {
		log.Printf("[App] Warning: %v", fmt.Errorf("invalid color '%s': %w", s, err))
		return color.White
	}
	return c
}
