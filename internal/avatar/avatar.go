package avatar

import (
	"fmt"
	"net/url"
	"strings"
)

// Palette of background colors cycled by name so each player gets a stable
// color without storing one.
var palette = []string{"0D8ABC", "E0541F", "2E8B57", "8E44AD", "C0392B", "16A085"}

// Generator builds avatar image URLs against an initials-avatar API
// (ui-avatars.com compatible).
type Generator struct {
	baseURL string
}

// New creates a generator for the given API base URL.
func New(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the avatar image URL for a display name.
func (g *Generator) URL(fullName string) string {
	if strings.TrimSpace(fullName) == "" {
		fullName = "?"
	}

	params := url.Values{}
	params.Set("name", fullName)
	params.Set("size", "128")
	params.Set("background", palette[hashName(fullName)%len(palette)])
	params.Set("color", "fff")
	params.Set("bold", "true")

	return fmt.Sprintf("%s/?%s", g.baseURL, params.Encode())
}

func hashName(name string) int {
	h := 0
	for _, r := range name {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	return h
}
