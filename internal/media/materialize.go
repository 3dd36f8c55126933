package media

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Kind string

const (
	KindImage   Kind = "image"
	KindYouTube Kind = "youtube"
)

// Materialized is the eager markup for one placeholder, plus what the client
// shows if the media itself fails to load.
type Materialized struct {
	HTML     string `json:"html"`
	Fallback string `json:"fallback"`
}

// Resolve turns placeholder data into eager markup.
func (e *Embedder) Resolve(kind Kind, data string, inCell bool) (Materialized, error) {
	switch kind {
	case KindImage:
		u, err := url.Parse(data)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return Materialized{}, fmt.Errorf("invalid image url %q", data)
		}
		return Materialized{HTML: e.ImageTag(data, inCell), Fallback: ImageFallback(data)}, nil
	case KindYouTube:
		v, err := DecodeVideoData(data)
		if err != nil {
			return Materialized{Fallback: VideoFallback}, err
		}
		return Materialized{HTML: e.IframeTag(v), Fallback: VideoFallback}, nil
	default:
		return Materialized{}, fmt.Errorf("unknown media kind %q", kind)
	}
}

// MaterializeAll replaces every lazy placeholder in fragment with its eager
// embed. Placeholders whose data cannot be decoded get the failure fallback.
func (e *Embedder) MaterializeAll(fragment string) string {
	if !strings.Contains(fragment, LazyImageClass) && !strings.Contains(fragment, LazyYouTubeClass) {
		return fragment
	}
	var b strings.Builder
	z := nethtml.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			return b.String()
		}
		if skip > 0 {
			switch tt {
			case nethtml.StartTagToken:
				if name, _ := z.TagName(); atom.Lookup(name) == atom.Div {
					skip++
				}
			case nethtml.EndTagToken:
				if name, _ := z.TagName(); atom.Lookup(name) == atom.Div {
					skip--
				}
			}
			continue
		}
		if tt == nethtml.StartTagToken {
			raw := string(z.Raw())
			tok := z.Token()
			if tok.DataAtom == atom.Div {
				if markup, ok := e.materializeToken(tok); ok {
					b.WriteString(markup)
					skip = 1
					continue
				}
			}
			b.WriteString(raw)
			continue
		}
		b.Write(z.Raw())
	}
}

func (e *Embedder) materializeToken(tok nethtml.Token) (string, bool) {
	var class, original, video string
	for _, a := range tok.Attr {
		switch a.Key {
		case "class":
			class = a.Val
		case "data-original-url":
			original = a.Val
		case "data-video-data":
			video = a.Val
		}
	}
	classes := strings.Fields(class)
	has := func(c string) bool { return slices.Contains(classes, c) }
	switch {
	case has(LazyImageClass):
		m, err := e.Resolve(KindImage, original, has(ImageContentClass))
		if err != nil {
			return ImageFallback(original), true
		}
		return m.HTML, true
	case has(LazyYouTubeClass):
		m, err := e.Resolve(KindYouTube, video, false)
		if err != nil {
			return VideoFallback, true
		}
		return m.HTML, true
	}
	return "", false
}
