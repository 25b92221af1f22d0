package certify_test

import (
	"fmt"
	"time"

	certify "github.com/apontes/go-certify"
)

// Example shows basic service construction. Issue then runs the full
// pipeline: record guard, template composition, headless-browser render,
// publication.
func Example() {
	svc := certify.New(
		certify.WithLaunchProfile(certify.ProfileLocal),
		certify.WithTimeout(60*time.Second),
		certify.WithRecordStore(certify.NewMemoryStore()),
	)
	defer svc.Close()

	fmt.Println(certify.ObjectKey("123"))
	// Output: 123.pdf
}
