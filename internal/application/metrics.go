package application

import "expvar"

// Counters published under /debug/vars.
var (
	registrationsTotal = expvar.NewInt("registrations")
	loginsOK           = expvar.NewInt("logins_ok")
	loginsFailed       = expvar.NewInt("logins_failed")
)
