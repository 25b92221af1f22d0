// Package certify issues personalized completion certificates. Given a
// recipient identity and a grade it renders an HTML template into a styled
// document, converts the document to a fixed-layout PDF with headless
// Chromium, maintains an idempotency record in a keyed store, and publishes
// the PDF to object storage under a public URL.
//
// The pipeline is strictly sequential per request: record guard, template
// composition, PDF rendering, publication. Each stage surfaces one of the
// sentinel errors in errors.go; all failures are terminal for the invocation.
//
// Basic usage:
//
//	svc := certify.New(
//		certify.WithRecordStore(store),
//		certify.WithPublisher(publisher),
//		certify.WithLaunchProfile(certify.ProfileLocal),
//	)
//	defer svc.Close()
//
//	res, err := svc.Issue(ctx, certify.Request{ID: "123", Name: "João", Grade: "Gold"})
package certify
