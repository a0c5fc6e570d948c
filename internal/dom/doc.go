// Package dom is a small in-memory element tree standing in for a browser
// page. It models only what the contact form touches: values, text, CSS
// classes, inline styles, hidden/disabled flags, select options, focus and
// scroll position.
//
// A Document guards every element with one lock, so a terminal front end can
// render while timer callbacks mutate the tree from another goroutine.
package dom
