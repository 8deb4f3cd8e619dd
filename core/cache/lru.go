package cache

import (
	"container/list"
	"sync"
	"time"
)

type LRUOpts struct {
	// Size bounds the number of entries; 128 when unset.
	Size int
	// OnEvict runs for entries removed by capacity pressure or TTL expiry.
	// It runs on the cache goroutine and must not call back into the cache.
	OnEvict func(key string, val any)
}

type entry struct {
	key       string
	val       any
	expiresAt time.Time
}

type getReq struct {
	key  string
	resp chan getResp
}

type getResp struct {
	val any
	ok  bool
}

type putReq struct {
	key  string
	val  any
	opts []PutOption
}

type LRU struct {
	getCh chan getReq
	putCh chan putReq
	delCh chan string

	done      chan struct{}
	closeOnce sync.Once
}

func NewLRU(opts LRUOpts) *LRU {
	if opts.Size <= 0 {
		opts.Size = 128
	}

	l := &LRU{
		getCh: make(chan getReq),
		putCh: make(chan putReq),
		delCh: make(chan string),
		done:  make(chan struct{}),
	}

	go l.run(opts.Size, opts.OnEvict)

	return l
}

func (L *LRU) Get(key string) (any, bool) {
	resp := make(chan getResp)
	select {
	case L.getCh <- getReq{key: key, resp: resp}:
	case <-L.done:
		return nil, false
	}
	r := <-resp
	return r.val, r.ok
}

func (L *LRU) Put(key string, val any, opts ...PutOption) {
	select {
	case L.putCh <- putReq{key: key, val: val, opts: opts}:
	case <-L.done:
	}
}

// Delete removes key without invoking OnEvict.
func (L *LRU) Delete(key string) {
	select {
	case L.delCh <- key:
	case <-L.done:
	}
}

// Close stops the cache goroutine. Later operations become no-ops.
func (L *LRU) Close() {
	L.closeOnce.Do(func() { close(L.done) })
}

func (L *LRU) run(size int, onEvict func(key string, val any)) {
	ll := list.New()
	entries := make(map[string]*list.Element)

	evict := func(ele *list.Element) {
		e := ele.Value.(*entry)
		ll.Remove(ele)
		delete(entries, e.key)
		if onEvict != nil {
			onEvict(e.key, e.val)
		}
	}

	expired := func(e *entry) bool {
		return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
	}

	for {
		select {
		case <-L.done:
			return

		case req := <-L.getCh:
			ele, ok := entries[req.key]
			if !ok {
				req.resp <- getResp{ok: false}
				continue
			}
			e := ele.Value.(*entry)
			if expired(e) {
				evict(ele)
				req.resp <- getResp{ok: false}
				continue
			}
			ll.MoveToFront(ele)
			req.resp <- getResp{val: e.val, ok: true}

		case req := <-L.putCh:
			var options PutOptions
			for _, opt := range req.opts {
				opt(&options)
			}
			var expiresAt time.Time
			if options.TTL > 0 {
				expiresAt = time.Now().Add(options.TTL)
			}

			if ele, ok := entries[req.key]; ok {
				ll.MoveToFront(ele)
				e := ele.Value.(*entry)
				e.val = req.val
				e.expiresAt = expiresAt
				continue
			}

			ele := ll.PushFront(&entry{key: req.key, val: req.val, expiresAt: expiresAt})
			entries[req.key] = ele
			if ll.Len() > size {
				if last := ll.Back(); last != nil {
					evict(last)
				}
			}

		case key := <-L.delCh:
			if ele, ok := entries[key]; ok {
				ll.Remove(ele)
				delete(entries, key)
			}
		}
	}
}

var _ Cache = (*LRU)(nil)
