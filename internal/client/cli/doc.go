// Package cli provides the interactive SecureDrive command-line client.
//
// The REPL keeps at most one session. Logging in unwraps the Master Key into
// guarded memory; every file command encrypts or decrypts locally and the
// server only sees ciphertext. Logging out, exiting, or an expired server
// session destroys the local key.
//
// Commands:
//
//	register                  create an account
//	login                     unlock the drive
//	upload <path>             encrypt and store a local file
//	list                      list stored files with decrypted names
//	download <name> [dest]    fetch, decrypt and save a file
//	delete <name>             remove a stored file
//	logout                    end the session
//	exit | quit               leave the program
package cli
