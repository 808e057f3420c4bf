/*
Package app puts the extensions together into a single application.

A transaction is decoded into Tx, passes the decorator chain (logging, panic
recovery, signature verification, savepoint) and is dispatched by the Router
to the handler registered for its message path. Application executes one
transaction at a time and stamps every one with the block time and chain id.
*/
package app
