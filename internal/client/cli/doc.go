// Package cli is the interactive gophauth client.
//
// App wires configuration, token storage, the HTTP transport and the session
// store, then runs a REPL whose commands play the role of views: a login
// form, a register form and protected views (home, whoami) that go through
// the access gate. The startup restore runs in the background; until it
// settles protected views show "Loading...".
package cli
