/*
Package system manages the startup, running, metrics and shutdown of the service.

Services register their long running parts (HTTP servers, background loops),
health checks, gauges and cleanups, then call Run. Run returns when any part
fails or the process is told to terminate, and Cleanup releases what was
registered in the order it was added.
*/
package system
