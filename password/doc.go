// Package password provides one-way salted password hashing for the auth
// guard. Current hashes use argon2id in PHC string format; hashes produced
// under older cost parameters, or under the legacy bcrypt scheme, still
// verify and are flagged for transparent rehash on the next successful
// login.
//
// Plaintext length policy (8-128 bytes) is enforced by the caller, not
// here: this package hashes whatever it is given.
package password
