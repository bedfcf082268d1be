// Package physics computes the per-tick forces and pair collisions.
//
// [ForceCalculator.ApplyForces] pulls every dynamic body toward the primary
// bodies with a softened, mass-weighted average force:
//
//	F_p = G * m_d * m_p * r / (|r| + softening)^1.9
//	w   = sum(m_p / (|r| + softening))
//	v  += clamp(sum(F_p) / w, maxForce) / m_d * dt
//
// followed by a small tangential nudge, isotropic jitter, a speed clamp and
// damping. Averaging keeps the pull bounded however many primaries exist.
//
// Collisions use cube-root radii: primary pairs touch at r_a + r_b, dynamic
// pairs at 1.5 * (r_a + r_b). [ForceCalculator.ElasticCollision] separates
// overlapping bodies and applies a restitution impulse with damping.
//
// All randomness comes from the injected [dynamo.Source].
package physics
