// Package urls holds the compiled-in intake endpoint URLs.
package urls
