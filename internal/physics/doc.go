// Package physics holds the per-frame particle kernels composed by the
// simulation step:
//
//   - [Interaction.Apply]: pairwise repulsion, attraction and bond bookkeeping
//   - [Relax.Pull] and [Relax.Overlap]: solid-state spring relaxation and
//     positional overlap projection
//   - [Motion.Thermalize], [Fall], [Integrate], [Motion.Contain]: free motion,
//     gravity, integration and container walls
//
// Every kernel mutates an ensemble in place and is deterministic given its
// inputs and random source.
package physics
