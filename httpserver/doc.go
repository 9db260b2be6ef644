/*
Package httpserver runs HTTP servers that bind eagerly and shut down gracefully.

The listener is opened by New, so a caller that has not yet called New has not
exposed anything. Accepted connections are reported as gauges through the
system package.
*/
package httpserver
