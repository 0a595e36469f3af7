package services

// HeldLocks reports how many session locks are currently tracked.
func (b *Builder) HeldLocks() int {
	return b.edits.len() + b.saves.len()
}
