// Package verifier authenticates inbound bearer tokens for the HTTP
// transport by introspecting them against a remote endpoint.
//
// This is the opposite direction from the credential store: the store
// authenticates this server to Google, the verifier authenticates callers to
// this server. Verification fails closed: any transport error, timeout, or
// ambiguous response denies the token.
package verifier
