package media

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
)

const (
	ImageContentClass     = "accordion-image-content"
	LazyImageClass        = "lazy-image-placeholder"
	LazyYouTubeClass      = "lazy-youtube-placeholder"
	VideoContainerClass   = "accordion-video-container"
	youTubeAllow          = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"
	thumbPlaceholderStyle = "display: block; margin: 0 auto; background: #333; border: 2px dashed #666; border-radius: 4px; text-align: center; color: #999; font-size: 12px; padding: 20px 10px;"
	lazyImageStyle        = "background: #333; border: 2px dashed #666; border-radius: 4px; text-align: center; color: #999; font-size: 14px; padding: 40px 20px; margin: 10px 0;"
	lazyVideoStyle        = "background: #222; border: 2px dashed #666; border-radius: 4px; text-align: center; color: #999; font-size: 14px; padding: 40px 20px; cursor: pointer;"
)

func Link(raw string) string {
	u := html.EscapeString(raw)
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, u, u)
}

// WrapLink wraps already rendered markup in an anchor to href.
func WrapLink(href, inner string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, html.EscapeString(href), inner)
}

func (e *Embedder) image(raw string, inCell, lazy bool) string {
	if lazy {
		return e.LazyImage(raw, inCell)
	}
	return e.ImageTag(raw, inCell)
}

// ImageTag is the eager image markup. Thumbnails stretch to fill when both
// bounds are set; answer images keep their aspect ratio unless disabled.
func (e *Embedder) ImageTag(raw string, inCell bool) string {
	maxW, maxH := e.opts.AnswerMaxWidth, e.opts.AnswerMaxHeight
	if inCell {
		maxW, maxH = e.opts.ThumbMaxWidth, e.opts.ThumbMaxHeight
	}
	var styles []string
	if maxW > 0 {
		styles = append(styles, fmt.Sprintf("max-width: %dpx", maxW))
	}
	if maxH > 0 {
		styles = append(styles, fmt.Sprintf("max-height: %dpx", maxH))
	}
	switch {
	case inCell && maxW > 0 && maxH > 0:
		styles = append(styles, fmt.Sprintf("width: %dpx", maxW), fmt.Sprintf("height: %dpx", maxH), "object-fit: fill")
	case !inCell && !e.opts.MaintainAspectRatio:
		if maxW > 0 {
			styles = append(styles, "width: 100%")
		}
		if maxH > 0 {
			styles = append(styles, fmt.Sprintf("height: %dpx", maxH))
		}
		styles = append(styles, "object-fit: fill")
	default:
		styles = append(styles, "width: auto", "height: auto", "object-fit: contain")
	}
	styles = append(styles, "display: block", "margin: "+e.margin(inCell))

	class := ""
	if inCell {
		class = ` class="` + ImageContentClass + `"`
	}
	return fmt.Sprintf(`<img src="%s"%s style="%s" alt="Image" loading="lazy">`,
		html.EscapeString(raw), class, strings.Join(styles, "; "))
}

func (e *Embedder) margin(inCell bool) string {
	if inCell {
		return "0 auto"
	}
	switch e.opts.AnswerAlign {
	case "left":
		return "0 auto 0 0"
	case "right":
		return "0 0 0 auto"
	default:
		return "0 auto"
	}
}

func (e *Embedder) LazyImage(raw string, inCell bool) string {
	class, style := LazyImageClass, lazyImageStyle
	if inCell {
		class, style = ImageContentClass+" "+LazyImageClass, thumbPlaceholderStyle
	}
	return fmt.Sprintf(`<div class="%s" data-original-url="%s" style="%s">📷 Image (Click to load)</div>`,
		class, html.EscapeString(raw), style)
}

func (e *Embedder) video(v Video, inCell, lazy bool) string {
	markup := e.IframeTag(v)
	if lazy {
		markup = e.LazyVideo(v)
	}
	if inCell {
		return markup
	}
	return e.VideoContainer(markup)
}

func (e *Embedder) VideoContainer(inner string) string {
	align := e.opts.YouTubeAlign
	if align == "" {
		align = "right"
	}
	return fmt.Sprintf(`<div class="%s" style="text-align: %s">%s</div>`, VideoContainerClass, align, inner)
}

func (e *Embedder) IframeTag(v Video) string {
	return fmt.Sprintf(`<iframe width="%d" height="%d" src="%s" frameborder="0" allow="%s" allowfullscreen></iframe>`,
		e.opts.YouTubeWidth, e.opts.YouTubeHeight, html.EscapeString(v.EmbedURL()), youTubeAllow)
}

func (e *Embedder) LazyVideo(v Video) string {
	return fmt.Sprintf(`<div class="%s" data-video-data="%s" style="%s">▶️ YouTube Video (Click to load)</div>`,
		LazyYouTubeClass, EncodeVideoData(v), lazyVideoStyle)
}

// EncodeVideoData is the placeholder payload: query-escaped JSON.
func EncodeVideoData(v Video) string {
	data, _ := json.Marshal(v)
	return url.QueryEscape(string(data))
}

func DecodeVideoData(encoded string) (Video, error) {
	raw, err := url.QueryUnescape(encoded)
	if err != nil {
		return Video{}, fmt.Errorf("unescape video data: %w", err)
	}
	var v Video
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Video{}, fmt.Errorf("decode video data: %w", err)
	}
	if v.VideoID == "" && v.PlaylistID == "" {
		return Video{}, fmt.Errorf("video data names no video or playlist")
	}
	return v, nil
}

func ImageFallback(raw string) string {
	return `❌ Failed to load image<br><a href="` + html.EscapeString(raw) + `" target="_blank" rel="noopener" style="color: #0ff;">Open in new tab</a>`
}

const VideoFallback = "❌ Failed to load video"
