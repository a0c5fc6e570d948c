// Package config loads the optional contact form configuration file.
//
// Every setting has a compiled-in default (see Default), so the tools work
// with no file at all. A file only needs the keys it overrides.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/contactform/config.yaml or $HOME/.config/contactform/config.yaml
//   - macOS: $HOME/.config/contactform/config.yaml
//   - Windows: %LOCALAPPDATA%\contactform\config.yaml
//
// # Example
//
//	version: 1
//	endpoints:
//	  - https://formspree.io/f/myzpgggg
//	  - https://submit-form.com/8bIc0Q0h8
//	form:
//	  reset_delay: 3s
//	  phone_policy: regional
//	  destinations: [USA, Canada, Germany]
//
// Files are validated with go-playground/validator struct tags; errors name
// the offending yaml key. Writes are atomic (temp file plus rename).
package config
