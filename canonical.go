// SPDX-License-Identifier: GPL-3.0-or-later

package cares

// findCanonical surfaces a canonical name on the head of the result
// chain, lifting it from a trailing node if necessary. This is the Go
// analogue of find_canonical.
func findCanonical(r *request) {
	if r.result != nil && r.result.CanonName != "" {
		// Already in place.
		r.nextState()
		return
	}

	for ai := r.result; ai != nil; ai = ai.Next {
		if ai != r.result && ai.CanonName != "" {
			r.result.CanonName = ai.CanonName
			r.nextState()
			return
		}
	}

	// No canonical name anywhere in the chain. No reverse-lookup
	// fallback is attempted (see Non-goals).
	r.fail(ErrBadName)
}
