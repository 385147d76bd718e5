package readlater

import (
	"net/url"
	"strings"
)

// Kind identifies what a submitted URL points at.
type Kind string

// Kinds returned by Classify.
const (
	KindArticle Kind = "article"
	KindVideo   Kind = "video"
)

// Classification is the outcome of Classify.
type Classification struct {
	Kind    Kind
	VideoID string
}

// videoPathPrefixes are the youtube.com paths whose next segment is the
// video ID.
var videoPathPrefixes = []string{"/shorts/", "/embed/", "/v/", "/live/"}

// Classify decides whether rawURL is a recognized video link or a generic
// article. It never fails: anything unrecognized is an article. Only
// youtube.com, its subdomains and youtu.be are recognized.
func Classify(rawURL string) Classification {
	if id := youTubeVideoID(rawURL); id != "" {
		return Classification{Kind: KindVideo, VideoID: id}
	}
	return Classification{Kind: KindArticle}
}

func youTubeVideoID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())

	switch {
	case host == "youtu.be":
		return firstSegment(strings.TrimPrefix(u.Path, "/"))
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if u.Path == "/watch" {
			return firstSegment(u.Query().Get("v"))
		}
		for _, prefix := range videoPathPrefixes {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				return firstSegment(rest)
			}
		}
	}
	return ""
}

// firstSegment returns s up to the first slash.
func firstSegment(s string) string {
	id, _, _ := strings.Cut(s, "/")
	return strings.TrimSpace(id)
}

// VideoThumbnailURL returns the thumbnail image for a YouTube video ID.
func VideoThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}
