/*
Package closer keeps the error from a deferred Close when nothing else failed.
*/
package closer

import "io"

// ErrorHandler closes c and stores its error in *in, unless *in already holds one.
//
//	defer closer.ErrorHandler(conn, &err)
func ErrorHandler(c io.Closer, in *error) {
	cerr := c.Close()
	if *in == nil {
		*in = cerr
	}
}
