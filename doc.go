/*

Package supi defines the interfaces shared by every part of the escrow
service: storage, messages, transactions, handlers and decorators. It also
contains the address and condition types used to identify accounts and the
context helpers that carry the block time, chain id and logger through a
transaction.

Extensions live under x/ and only depend on this package and each other
through the interfaces declared here.

*/
package supi
