package layout

import (
	"math"

	"graphite/backend/internal/graph"
)

// Params are the force constants of one simulation step
type Params struct {
	Gravity       float64 // pull of every node towards the centre
	TargetGravity float64 // extra pull on target companies
	Repulsion     float64 // inverse-square push between every pair
	LinkDistance  float64 // spring rest length
	LinkStrength  float64 // spring constant
	Damping       float64 // velocity kept per step
	MaxVelocity   float64 // speed cap per step, 0 disables it
}

// DefaultParams returns the constants the canvas was tuned with
func DefaultParams() Params {
	return Params{
		Gravity:       0.001,
		TargetGravity: 0.005,
		Repulsion:     500,
		LinkDistance:  100,
		LinkStrength:  0.01,
		Damping:       0.9,
		MaxVelocity:   50,
	}
}

// Step advances the simulation by one frame. Forces are computed from the
// positions at the start of the step, then velocities are damped and
// integrated. Pinned nodes receive no force and are moved onto their pin.
func Step(nodes []SimNode, links []SimLink, center Position, p Params) {
	for i := range nodes {
		n := &nodes[i]
		if n.Pinned {
			continue
		}

		n.Vel = n.Vel.Add(center.Sub(n.Pos).Scale(p.Gravity))
		if n.Type == graph.NodeCompany && n.IsTarget {
			n.Vel = n.Vel.Add(center.Sub(n.Pos).Scale(p.TargetGravity))
		}

		for j := range nodes {
			if i == j {
				continue
			}
			d := n.Pos.Sub(nodes[j].Pos)
			dist := math.Hypot(d.X, d.Y)
			if dist == 0 {
				// coincident pair: the lower index moves right, the higher left
				d, dist = Position{X: 1}, 1
				if i > j {
					d.X = -1
				}
			}
			force := p.Repulsion / (dist * dist)
			n.Vel = n.Vel.Add(d.Scale(force / dist))
		}
	}

	for _, l := range links {
		if !l.Resolved() || l.Source >= len(nodes) || l.Target >= len(nodes) {
			continue
		}
		source, target := &nodes[l.Source], &nodes[l.Target]
		d := target.Pos.Sub(source.Pos)
		dist := math.Hypot(d.X, d.Y)
		if dist == 0 {
			dist = 1
		}
		f := d.Scale((dist - p.LinkDistance) * p.LinkStrength / dist)
		if !source.Pinned {
			source.Vel = source.Vel.Add(f)
		}
		if !target.Pinned {
			target.Vel = target.Vel.Sub(f)
		}
	}

	for i := range nodes {
		n := &nodes[i]
		if n.Pinned {
			n.Pos = n.Pin
			n.Vel = Position{}
			continue
		}
		n.Vel = capSpeed(n.Vel.Scale(p.Damping), p.MaxVelocity)
		n.Pos = n.Pos.Add(n.Vel)
	}
}

func capSpeed(v Position, limit float64) Position {
	if limit <= 0 {
		return v
	}
	speed := math.Hypot(v.X, v.Y)
	if speed <= limit {
		return v
	}
	return v.Scale(limit / speed)
}

// KineticEnergy sums the squared speeds of the unpinned nodes
func KineticEnergy(nodes []SimNode) float64 {
	var e float64
	for _, n := range nodes {
		if !n.Pinned {
			e += n.Vel.X*n.Vel.X + n.Vel.Y*n.Vel.Y
		}
	}
	return e
}
