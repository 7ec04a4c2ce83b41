package resolver

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/famomatic/crunchdl/client"
)

// Resolution is a requested video size. The Best and Worst sentinels ask
// for the widest and narrowest available variant.
type Resolution struct {
	Width  int
	Height int
}

var (
	// Best selects the widest available variant.
	Best = Resolution{Width: math.MaxInt, Height: math.MaxInt}
	// Worst selects the narrowest available variant.
	Worst = Resolution{Width: math.MinInt, Height: math.MinInt}
)

// ParseResolution accepts "best"/"worst", a pixel abbreviation like
// "1080p", or an explicit size like "1920x1080".
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best":
		return Best, nil
	case "worst":
		return Worst, nil
	}

	if w, h, ok := strings.Cut(s, "x"); ok {
		width, werr := strconv.Atoi(w)
		height, herr := strconv.Atoi(h)
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			return Resolution{}, fmt.Errorf("invalid resolution %q", s)
		}
		return Resolution{Width: width, Height: height}, nil
	}

	if h := strings.TrimSuffix(s, "p"); h != s {
		height, err := strconv.Atoi(h)
		if err != nil || height <= 0 {
			return Resolution{}, fmt.Errorf("invalid resolution %q", s)
		}
		return Resolution{Width: height / 9 * 16, Height: height}, nil
	}

	return Resolution{}, fmt.Errorf("invalid resolution %q", s)
}

func (r Resolution) String() string {
	switch r {
	case Best:
		return "best"
	case Worst:
		return "worst"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// selectVariant applies the resolution selection rule: variants sorted by
// width descending; Best takes the first, Worst the last, and an exact
// request takes the first variant matching the requested height. Equal
// heights keep manifest order (stable sort), so ties resolve to the first
// match deterministically.
func selectVariant(variants []client.StreamVariant, res Resolution) (client.StreamVariant, bool) {
	if len(variants) == 0 {
		return client.StreamVariant{}, false
	}

	sorted := make([]client.StreamVariant, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Width > sorted[j].Width
	})

	switch res {
	case Best:
		return sorted[0], true
	case Worst:
		return sorted[len(sorted)-1], true
	}
	for _, v := range sorted {
		if v.Height == res.Height {
			return v, true
		}
	}
	return client.StreamVariant{}, false
}
