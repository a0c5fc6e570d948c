package urls

// Compiled-in intake endpoints, tried in this order. A config file may
// replace the list.

// Formspree is the primary hosted form intake.
const Formspree = "https://formspree.io/f/myzpgggg"

// SubmitForm is the fallback hosted form intake.
const SubmitForm = "https://submit-form.com/8bIc0Q0h8"

// DefaultEndpoints returns the compiled-in endpoint list in priority order.
// A new slice is returned on each call so callers may modify it.
func DefaultEndpoints() []string {
	return []string{Formspree, SubmitForm}
}

// LocalIntakePath is the path a local mock intake serves forms under,
// mirroring the hosted services' /f/<form-id> layout.
const LocalIntakePath = "/f/"
