package voxproxy

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxcore/voxcore/voxbroad"
	"github.com/voxcore/voxcore/voxconfig"
	"github.com/voxcore/voxcore/voxmath"
)

// proxyRestitution is the fixed bounce used for proxy-proxy contact,
// independent of the impact-speed curve voxbody uses against terrain
// (spec §4.8 names only "pair resolution", not a velocity-dependent model
// for it — generic proxies are expected to be cheap, interchangeable
// clutter rather than individually-tuned bodies).
const proxyRestitution = 0.3

// resolvePairs finds overlapping proxy pairs via sweep-and-prune below
// voxconfig.GetPairBruteForceLimit, or the uniform grid above it (spec
// §4.9), and separates + bounces each overlapping pair.
func (s *State) resolvePairs() {
	n := len(s.proxyLive)
	if n < 2 {
		return
	}

	var pairs []voxbroad.Pair
	if n <= voxconfig.GetPairBruteForceLimit() {
		s.sap.Reset()
		for _, slot := range s.proxyLive {
			p := &s.proxies[slot]
			r := p.boundingRadius()
			s.sap.Insert(slot, voxmath.AABBFromCenterHalfExtents(p.Position, mgl32.Vec3{r, r, r}))
		}
		pairs = s.sap.Pairs()
	} else {
		s.grid.Reset()
		for _, slot := range s.proxyLive {
			s.grid.Insert(slot, s.proxies[slot].Position)
		}
		pairs = s.grid.Pairs()
	}

	for _, pr := range pairs {
		s.resolvePair(&s.proxies[pr.A], &s.proxies[pr.B])
	}
}

func (s *State) resolvePair(a, b *Proxy) {
	if !a.Active || !b.Active {
		return
	}
	if !a.CollideWithProxies || !b.CollideWithProxies {
		return
	}
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	minDist := a.boundingRadius() + b.boundingRadius()
	if dist >= minDist || dist < 1e-6 {
		return
	}
	normal := delta.Mul(1 / dist)
	overlap := minDist - dist
	correction := normal.Mul(overlap * 0.5)
	a.Position = a.Position.Sub(correction)
	b.Position = b.Position.Add(correction)

	relVel := b.Velocity.Sub(a.Velocity)
	along := relVel.Dot(normal)
	if along >= 0 {
		return
	}
	restitution := proxyRestitution * (a.Restitution + b.Restitution) * 0.5
	impulse := normal.Mul(-along * (1 + restitution) * 0.5)
	a.Velocity = a.Velocity.Sub(impulse)
	b.Velocity = b.Velocity.Add(impulse)
}
