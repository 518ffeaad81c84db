// Package transcription holds the transcription domain: the record and view
// types, the error taxonomy shared by every layer, the Repository over the
// record store, and the read-only QueryService.
package transcription
