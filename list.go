// SPDX-License-Identifier: GPL-3.0-or-later

package cares

// prependAddrInfo adds node to the front of the chain rooted at *head.
// This is the Go analogue of the linked-list prepend the teacher's state
// functions perform inline (result->ai_next = cb->ar_result; cb->ar_result
// = result).
func prependAddrInfo(head **AddrInfo, node *AddrInfo) {
	node.Next = *head
	*head = node
}

// FreeAddrInfo releases the chain rooted at head, the Go analogue of
// ares_freeaddrinfo. It is a no-op when head is nil and safe to call more
// than once on disjoint sub-chains, but calling it twice on the same
// chain is undefined once the first call has detached the nodes.
//
// Because Go is garbage collected this does not reclaim memory directly;
// it drops every node's outgoing references so nothing keeps the chain
// alive longer than necessary, matching the documented release contract.
func FreeAddrInfo(head *AddrInfo) {
	for head != nil {
		next := head.Next
		head.Next = nil
		head.CanonName = ""
		head = next
	}
}
