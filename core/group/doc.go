// Package group manages families of actors that share one behavior.
//
// Two shapes are provided:
//
//   - [Keyed]: one actor per key, spawned on first use. Concurrent lookups
//     of the same key spawn exactly once. An optional residency bound
//     passivates the least recently used actor, so a service can address
//     millions of keys while only the hot ones stay resident.
//
//   - [Pool]: a fixed set of members spawned up front, with stable
//     key-to-member routing. Work for the same key always lands on the
//     same member, which keeps per-key ordering without one actor
//     becoming the bottleneck.
//
// Both spawn through a [system.System], so their actors show up in the
// registry, inherit the system's event stream and metrics, and are torn
// down by System.Stop like any other actor.
package group
