// Package clock abstracts delayed callbacks so timed UI transitions can be
// driven by real time in production and advanced by hand in tests.
//
// Scheduler is the only dependency the form needs:
//
//	sched := clock.NewReal()
//	t := sched.AfterFunc(3*time.Second, func() { ... })
//	t.Stop()
//
// Manual keeps a virtual "now" and fires callbacks synchronously from Advance,
// in deadline order:
//
//	m := clock.NewManual()
//	m.AfterFunc(3*time.Second, fn)
//	m.Advance(3 * time.Second) // fn runs here
package clock
