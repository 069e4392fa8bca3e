package tracker

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// TierPolicy selects which URLs of each announce-list tier are used.
type TierPolicy int

const (
	// FirstPerTier takes only the first URL of every tier.
	FirstPerTier TierPolicy = iota
	// AllPerTier takes every URL of every tier, in order.
	AllPerTier
)

// URLError reports a tracker URL that could not be used.
type URLError struct {
	URL  string
	Tier int
	Err  error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("tracker: bad url %q: %v", e.URL, e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }

var (
	errNoScheme = errors.New("missing scheme")
	errNoHost   = errors.New("missing host")
)

// Registry is the ordered tracker list built from a descriptor.
type Registry struct {
	Trackers []Tracker
	Skipped  []*URLError
}

// Build classifies the primary URL and the announce-list tiers. Malformed
// entries are recorded in Skipped and do not stop the build. Exact duplicate
// URLs are kept once, at their first position.
func Build(primary string, tiers [][]string, policy TierPolicy) Registry {
	var r Registry
	seen := make(map[string]bool)

	add := func(raw string, tier int) {
		raw = strings.TrimSpace(raw)
		if seen[raw] {
			return
		}
		seen[raw] = true

		t, err := newTracker(raw, tier)
		if err != nil {
			r.Skipped = append(r.Skipped, &URLError{URL: raw, Tier: tier, Err: err})
			return
		}
		r.Trackers = append(r.Trackers, t)
	}

	add(primary, -1)
	for i, tier := range tiers {
		if len(tier) == 0 {
			continue
		}
		if policy == FirstPerTier {
			add(tier[0], i)
			continue
		}
		for _, raw := range tier {
			add(raw, i)
		}
	}
	return r
}

func newTracker(raw string, tier int) (Tracker, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Tracker{}, err
	}
	if u.Scheme == "" {
		return Tracker{}, errNoScheme
	}
	if u.Host == "" {
		return Tracker{}, errNoHost
	}

	protocol := HTTP
	if u.Scheme == "udp" {
		protocol = UDP
	}
	return Tracker{Raw: raw, URL: u, Protocol: protocol, Tier: tier}, nil
}

// UDP returns the UDP trackers in order.
func (r Registry) UDP() []Tracker {
	return r.filter(UDP)
}

// HTTP returns the HTTP(S) trackers in order.
func (r Registry) HTTP() []Tracker {
	return r.filter(HTTP)
}

func (r Registry) filter(p Protocol) []Tracker {
	var out []Tracker
	for _, t := range r.Trackers {
		if t.Protocol == p {
			out = append(out, t)
		}
	}
	return out
}
