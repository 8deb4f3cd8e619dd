package cache

// Nop discards all writes and never hits.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (n *Nop) Get(key string) (any, bool) { return nil, false }

func (n *Nop) Put(key string, val any, opts ...PutOption) {}

func (n *Nop) Delete(key string) {}

var _ Cache = (*Nop)(nil)
