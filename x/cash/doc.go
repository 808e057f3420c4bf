/*
Package cash is the token ledger: it keeps the wallet of every address and
moves tokens between them.

Value transfers never create or destroy tokens, with the exception of
IssueCoins which is used to fund wallets from the genesis file.
*/
package cash
