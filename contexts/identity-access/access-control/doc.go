// Package accesscontrol holds the capability state the other contexts
// consult before privileged operations: the owner account, the authorized
// set, and sale whitelist membership. Consumers receive it as an injected
// capability object, never as ambient global state.
package accesscontrol
