package framing

// A VictimFinder decides which resident entry should be evicted when every
// frame is occupied.
type VictimFinder interface {
	FindVictim(table FrameTable) (Residency, bool)
}
