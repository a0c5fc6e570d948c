// Package page assembles the contact section of the site: it builds the
// element tree, binds a form.Form to it and connects the form to a
// submission client built from config.
//
// Both front ends (the terminal form and the headless submit command) start
// from page.New and differ only in how they feed events in.
package page
