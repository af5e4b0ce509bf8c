// Package errors defines error types for the r2pipe driver.
//
// This package provides structured error types that wrap different failure
// scenarios when driving a radare2 subprocess. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
