/*
Package worker runs a function in a loop with tracing, panic recovery, and
back-off when the function reports there was nothing to do.

The system package uses it to publish gauges, and it suits any other periodic
background job such as pool statistics.
*/
package worker
