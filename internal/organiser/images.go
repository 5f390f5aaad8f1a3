package organiser

import (
	"math/rand"
	"sync/atomic"

	"ticketdesk/internal/config"
)

// imagePool is the fixed set of decorative banners assigned to new
// drafts. Paths resolve under the embedded static file tree.
var imagePool = []string{
	"/static/images/banner-aurora.svg",
	"/static/images/banner-crowd.svg",
	"/static/images/banner-lights.svg",
	"/static/images/banner-stage.svg",
	"/static/images/banner-tickets.svg",
}

// ImagePicker selects a decorative image for a new draft event. The
// policy is configurable: the original application flip-flopped between
// random choice and round-robin across revisions.
type ImagePicker interface {
	Next() string
}

type randomPicker struct{}

func (randomPicker) Next() string {
	return imagePool[rand.Intn(len(imagePool))]
}

type roundRobinPicker struct {
	counter atomic.Uint64
}

func (p *roundRobinPicker) Next() string {
	n := p.counter.Add(1) - 1
	return imagePool[int(n%uint64(len(imagePool)))]
}

// NewImagePicker builds the picker for the configured policy. Unknown
// policies fall back to random.
func NewImagePicker(policy string) ImagePicker {
	if policy == config.ImagePolicyRoundRobin {
		return &roundRobinPicker{}
	}
	return randomPicker{}
}
