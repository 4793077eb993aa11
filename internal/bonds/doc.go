// Package bonds keeps the transient bond ledger: one open record per
// unordered particle pair, a rolling FIFO of closed durations and a
// time-windowed average of the open count.
package bonds
