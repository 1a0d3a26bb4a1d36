package dream

import (
	"net/url"
	"strings"
)

// DefaultVisualizationStyle is applied when the caller names no style.
const DefaultVisualizationStyle = "dreamy"

type sceneImage struct {
	keyword string
	url     string
}

var sceneImages = [...]sceneImage{
	{"ocean", "https://images.pexels.com/photos/1001682/pexels-photo-1001682.jpeg?auto=compress&cs=tinysrgb&w=800"},
	{"mountain", "https://images.pexels.com/photos/1271619/pexels-photo-1271619.jpeg?auto=compress&cs=tinysrgb&w=800"},
	{"forest", "https://images.pexels.com/photos/1005417/pexels-photo-1005417.jpeg?auto=compress&cs=tinysrgb&w=800"},
	{"night", "https://images.pexels.com/photos/1624438/pexels-photo-1624438.jpeg?auto=compress&cs=tinysrgb&w=800"},
	{"city", "https://images.pexels.com/photos/1519088/pexels-photo-1519088.jpeg?auto=compress&cs=tinysrgb&w=800"},
}

const defaultSceneImage = "https://images.pexels.com/photos/1275929/pexels-photo-1275929.jpeg?auto=compress&cs=tinysrgb&w=800"

// VisualizationURL picks a scene image for content, first keyword wins.
func VisualizationURL(content, style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultVisualizationStyle
	}
	lower := strings.ToLower(content)
	base := defaultSceneImage
	for _, scene := range sceneImages {
		if strings.Contains(lower, scene.keyword) {
			base = scene.url
			break
		}
	}
	return base + "&style=" + url.QueryEscape(style)
}
