/*
Package db contains tools for working safely with the MySQL (or Dolt) database.

There are tools for:
- connecting over a unix socket or TCP
- a connection pool that hands out dedicated connections and always returns them
- mapping driver errors to a few package errors
- observability (both for queries and connection info)
- health checks
*/
package db
