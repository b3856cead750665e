package sim

// broadcast wakes every waiter by closing a channel and replacing it.
// Callers hold the owning store's mutex for both wait and notifyAll, then
// release it before selecting on the returned channel.
type broadcast struct {
	ch chan struct{}
}

func newBroadcast() broadcast {
	return broadcast{ch: make(chan struct{})}
}

// wait returns the channel closed by the next notifyAll.
func (b *broadcast) wait() <-chan struct{} {
	return b.ch
}

func (b *broadcast) notifyAll() {
	close(b.ch)
	b.ch = make(chan struct{})
}
