/*
Package healthcheck serves the admin API: liveness and readiness built from the
checks registered with the system package, and the Go runtime's pprof endpoints.
*/
package healthcheck
