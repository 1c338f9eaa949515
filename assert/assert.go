package assert

import "github.com/oomph-ac/replica/oerror"

// IsTrue panics with a *oerror.ReplicaError if ok is false. It is reserved for programmer invariants,
// never for values that originate from a client.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
