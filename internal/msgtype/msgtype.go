// Package msgtype derives stable names and dispatch keys for message types.
//
// The dispatch key is the exact reflect.Type, so Foo and *Foo bind
// independently. The name is the pointer-free qualified type name and exists
// for logs, metrics and events only; types can override it by implementing
// MsgType() string.
package msgtype

import (
	"reflect"
	"sync"
)

type Info struct {
	Name string       // qualified display name, pointer-free
	Key  reflect.Type // exact type, used as the dispatch key
}

type namer interface{ MsgType() string }

var (
	mu    sync.RWMutex
	cache = make(map[reflect.Type]Info)
)

// For returns the Info for the static type T.
func For[T any]() Info {
	var z T
	if n, ok := any(z).(namer); ok {
		return Info{Name: n.MsgType(), Key: reflect.TypeFor[T]()}
	}
	return forType(reflect.TypeFor[T]())
}

// Of returns the Info for the dynamic type of x.
func Of(x any) Info {
	if n, ok := x.(namer); ok {
		return Info{Name: n.MsgType(), Key: reflect.TypeOf(x)}
	}
	return forType(reflect.TypeOf(x))
}

func forType(t reflect.Type) Info {
	if t == nil {
		return Info{}
	}

	mu.RLock()
	info, ok := cache[t]
	mu.RUnlock()
	if ok {
		return info
	}

	named := t
	if named.Kind() == reflect.Pointer {
		named = named.Elem()
	}

	name := named.Name()
	if pkg := named.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}

	info = Info{Name: name, Key: t}

	mu.Lock()
	cache[t] = info
	mu.Unlock()
	return info
}
