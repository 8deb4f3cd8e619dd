// Package system provides a registry for running actors: spawn through
// it, look actors up by ID, and stop everything with one call.
//
// A System hands every actor it spawns a shared parent context, logger,
// event stream and metrics, so wiring happens once instead of per actor.
// Registrations disappear on their own when an actor terminates, whatever
// the reason: an explicit Stop, a self-stop from a handler, or parent
// context cancellation.
//
// # Usage
//
//	sys := system.New(system.Options{Log: log})
//
//	addr, err := system.Spawn(sys, actor.Options{ID: "greeter"}, &greeter{},
//	    actor.On(func(g *greeter, ctx *actor.Context[*greeter], msg Hello) error {
//	        ctx.Log().Info("hello", slog.String("from", msg.From))
//	        return nil
//	    }),
//	)
//
//	// ... later: stop every actor still registered, newest first.
//	err = sys.Stop(ctx)
//
// Spawn is a package function rather than a method so the actor type can
// stay a type parameter; Go methods cannot introduce new type parameters.
package system
