// Package services contains the SecureDrive client application services.
//
// AuthService turns an email and password into a session: it fetches the
// wrapped Master Key, unwraps it locally and proves possession to the server
// with a derived auth key. FileService encrypts files before upload and
// decrypts them after download; the server only ever sees ciphertext.
package services
