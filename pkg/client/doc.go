// Package client is a Go client for the notes REST API.
//
//	c := client.New("http://localhost:8080", token)
//	if err := c.RegisterDevice(ctx, "laptop", publicKey); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := c.EncryptedSecret(ctx, publicKey); errors.Is(err, store.ErrKeyNotSynchronized) {
//	    // another device has to upload the secret first
//	}
package client
