// ABOUTME: Product and version constants
// ABOUTME: Reported by the command line tools and in request headers
package version

import "fmt"

const (
	// Product is the product name shown by the tools
	Product = "Speex Player"

	// Manufacturer identifies the publisher
	Manufacturer = "Resonate"

	// Version is the release version
	Version = "0.1.0"
)

// String returns the product name and version
func String() string {
	return fmt.Sprintf("%s %s", Product, Version)
}

// UserAgent returns the value sent in HTTP User-Agent headers
func UserAgent() string {
	return fmt.Sprintf("resonate-speex/%s", Version)
}
