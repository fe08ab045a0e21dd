// Package blobstore keeps published artifacts in memory and hands out opaque
// locators for them.
//
// A locator has the form "blob:<uuid>" and stays valid until it is revoked,
// either explicitly with Revoke or by the TTL sweep. Start runs the sweep on
// a cron schedule:
//
//	store, err := blobstore.New(blobstore.Config{
//		Name:        "previews",
//		TTL:         10 * time.Minute,
//		JanitorSpec: "@every 1m",
//	})
//	if err := store.Start(); err != nil { ... }
//	defer store.Stop(context.Background())
//
// Store implements the publisher interface expected by package encoder.
package blobstore
