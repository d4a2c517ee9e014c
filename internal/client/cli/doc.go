// Package cli is the terminal front end of useradmin: an interactive REPL
// and the cobra commands that run single REPL commands non-interactively.
//
// App wires the local session database, the REST client, the session store,
// the route guard and the list/form controllers together. Protected commands
// are wrapped by the guard and never run without a session.
package cli
