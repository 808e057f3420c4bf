/*
Package otpescrow implements escrows released by a one-time passcode.

A sender locks an amount of a token under a caller chosen payment id and
commits to the SHA-256 hash of a passcode. Anyone presenting the passcode
releases the funds to the receiver. Until then the sender may cancel and get
the funds back. Each escrow is finalized exactly once and its record is never
removed.

Funds are held by an address derived from the payment id, see
HoldingAddress.
*/
package otpescrow
