// Package sealer encrypts data at rest with AES-256-GCM.
//
// Sealed blobs use a packed layout: a version byte, the GCM tag, the
// nonce, then the ciphertext. Associated data binds a blob to its purpose so
// a sealed snapshot cannot be replayed as something else.
//
//	s, err := sealer.New(dataKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sealed, err := s.Seal([]byte("snapshot"), plaintext)
//	plaintext, err = s.Open([]byte("snapshot"), sealed)
package sealer
