// Package ecsig verifies secp256k1 ECDSA signatures over keccak256 digests.
//
// A caller proves ownership of an address by signing a channel specific
// message (a phone number, an authenticator secret or the address itself)
// with the private key whose public key coordinates form the address.
package ecsig
