package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Video identifies an embeddable YouTube target.
type Video struct {
	URL        string `json:"url"`
	VideoID    string `json:"videoId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
	Start      int    `json:"start,omitempty"`
}

var (
	youTubeIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	youTubeTimeRe = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)
)

func isYouTubeURL(raw string) bool {
	return strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be")
}

// ParseYouTube extracts the video id, playlist id and start offset from the
// watch, shorts and youtu.be URL shapes. Root-domain URLs and URLs naming
// neither a video nor a playlist report false.
func ParseYouTube(raw string) (Video, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Video{}, false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	q := u.Query()
	v := Video{URL: raw}

	switch host {
	case "youtu.be":
		v.VideoID = strings.Trim(u.Path, "/")
	case "youtube.com":
		switch {
		case u.Path == "/watch":
			v.VideoID = q.Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			v.VideoID = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
		case strings.HasPrefix(u.Path, "/embed/"):
			v.VideoID = strings.Trim(strings.TrimPrefix(u.Path, "/embed/"), "/")
		}
	default:
		return Video{}, false
	}
	if !youTubeIDRe.MatchString(v.VideoID) || v.VideoID == "videoseries" {
		v.VideoID = ""
	}
	if list := q.Get("list"); youTubeIDRe.MatchString(list) {
		v.PlaylistID = list
	}
	if v.VideoID == "" && v.PlaylistID == "" {
		return Video{}, false
	}
	if t := q.Get("t"); t != "" && v.VideoID != "" {
		v.Start = parseStart(t)
	} else if s := q.Get("start"); s != "" && v.VideoID != "" {
		v.Start = parseStart(s)
	}
	return v, true
}

// parseStart accepts raw seconds ("90", "90s") and the composite "1h2m3s" form.
func parseStart(t string) int {
	m := youTubeTimeRe.FindStringSubmatch(strings.ToLower(t))
	if m == nil {
		return 0
	}
	total := 0
	for i, scale := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		total += n * scale
	}
	return total
}

// EmbedURL prefers video with playlist, then playlist only, then video only.
func (v Video) EmbedURL() string {
	const base = "https://www.youtube.com/embed/"
	q := url.Values{}
	switch {
	case v.VideoID != "" && v.PlaylistID != "":
		if v.Start > 0 {
			return fmt.Sprintf("%s%s?start=%d&list=%s", base, v.VideoID, v.Start, v.PlaylistID)
		}
		return fmt.Sprintf("%s%s?list=%s", base, v.VideoID, v.PlaylistID)
	case v.PlaylistID != "":
		q.Set("list", v.PlaylistID)
		return base + "videoseries?" + q.Encode()
	case v.Start > 0:
		return fmt.Sprintf("%s%s?start=%d", base, v.VideoID, v.Start)
	default:
		return base + v.VideoID
	}
}
