// Package utils contains decorators shared by all applications: atomic
// savepoints, transaction logging and panic recovery.
package utils
