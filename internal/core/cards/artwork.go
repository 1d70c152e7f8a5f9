package cards

import "strings"

// StaticArtwork resolves template artwork against a fixed set of assets served
// from one base URL, in the order they were registered.
type StaticArtwork struct {
	baseURL string
	order   []string
	known   map[string]bool
}

func NewStaticArtwork(baseURL string, assets ...string) *StaticArtwork {
	known := make(map[string]bool, len(assets))
	for _, a := range assets {
		known[a] = true
	}
	return &StaticArtwork{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		order:   assets,
		known:   known,
	}
}

func (s *StaticArtwork) Resolve(asset string) (string, bool) {
	if asset == "" || !s.known[asset] {
		return "", false
	}
	return s.baseURL + "/" + asset, true
}

func (s *StaticArtwork) AnyAsset() (string, bool) {
	if len(s.order) == 0 {
		return "", false
	}
	return s.baseURL + "/" + s.order[0], true
}
