// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversation messages and planning state.
// They are not intended for production usage.
package testutil
