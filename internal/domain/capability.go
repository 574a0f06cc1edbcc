package domain

import "sort"

// Capability is an atomic permission code, namespaced by the business entity
// it governs (e.g. "booking.create"). The set of valid codes is a closed
// registry: a code that is not registered here is invalid everywhere, so new
// business capabilities are unusable until explicitly added (allowlist,
// safe-by-default).
type Capability string

// Business-entity capabilities.
const (
	CapBookingView   Capability = "booking.view"
	CapBookingCreate Capability = "booking.create"
	CapBookingEdit   Capability = "booking.edit"
	CapBookingDelete Capability = "booking.delete"

	CapCustomerView   Capability = "customer.view"
	CapCustomerCreate Capability = "customer.create"
	CapCustomerEdit   Capability = "customer.edit"
	CapCustomerDelete Capability = "customer.delete"

	CapServiceView   Capability = "service.view"
	CapServiceCreate Capability = "service.create"
	CapServiceEdit   Capability = "service.edit"
	CapServiceDelete Capability = "service.delete"

	CapStaffView   Capability = "staff.view"
	CapStaffCreate Capability = "staff.create"
	CapStaffEdit   Capability = "staff.edit"
	CapStaffDelete Capability = "staff.delete"

	CapResourceView   Capability = "resource.view"
	CapResourceCreate Capability = "resource.create"
	CapResourceEdit   Capability = "resource.edit"
	CapResourceDelete Capability = "resource.delete"

	CapNotificationView   Capability = "notification.view"
	CapNotificationCreate Capability = "notification.create"
	CapNotificationEdit   Capability = "notification.edit"

	CapPaymentView Capability = "payment.view"
	CapPaymentEdit Capability = "payment.edit"

	CapTenantView Capability = "tenant.view"
	CapTenantEdit Capability = "tenant.edit"
)

// Principal, membership and role management capabilities. Everything except
// the view codes is reserved: no custom role may ever include them.
const (
	CapPrincipalView   Capability = "principal.view"
	CapPrincipalCreate Capability = "principal.create"
	CapPrincipalEdit   Capability = "principal.edit"
	CapPrincipalDelete Capability = "principal.delete"

	CapMembershipView   Capability = "membership.view"
	CapMembershipAssign Capability = "membership.assign"
	CapMembershipRevoke Capability = "membership.revoke"

	CapRoleView   Capability = "role.view"
	CapRoleCreate Capability = "role.create"
	CapRoleEdit   Capability = "role.edit"
	CapRoleDelete Capability = "role.delete"
)

// Platform-sensitive capabilities. Only platform owners hold these; platform
// operators are denied them even in the platform context, which is what makes
// self-escalation and peer-collusion impossible at the capability level.
const (
	CapPlatformOwnerGrant    Capability = "platform.owner.grant"
	CapPlatformOperatorGrant Capability = "platform.operator.grant"
	CapPrincipalFlagsEdit    Capability = "principal.flags.edit"
	CapTenantRegister        Capability = "platform.tenant.register"
	CapTenantTeardown        Capability = "platform.tenant.teardown"
	CapTenantSuspend         Capability = "platform.tenant.suspend"
	CapRoleResync            Capability = "platform.role.resync"
)

var capabilityRegistry = map[Capability]struct{}{
	CapBookingView: {}, CapBookingCreate: {}, CapBookingEdit: {}, CapBookingDelete: {},
	CapCustomerView: {}, CapCustomerCreate: {}, CapCustomerEdit: {}, CapCustomerDelete: {},
	CapServiceView: {}, CapServiceCreate: {}, CapServiceEdit: {}, CapServiceDelete: {},
	CapStaffView: {}, CapStaffCreate: {}, CapStaffEdit: {}, CapStaffDelete: {},
	CapResourceView: {}, CapResourceCreate: {}, CapResourceEdit: {}, CapResourceDelete: {},
	CapNotificationView: {}, CapNotificationCreate: {}, CapNotificationEdit: {},
	CapPaymentView: {}, CapPaymentEdit: {},
	CapTenantView: {}, CapTenantEdit: {},
	CapPrincipalView: {}, CapPrincipalCreate: {}, CapPrincipalEdit: {}, CapPrincipalDelete: {},
	CapMembershipView: {}, CapMembershipAssign: {}, CapMembershipRevoke: {},
	CapRoleView: {}, CapRoleCreate: {}, CapRoleEdit: {}, CapRoleDelete: {},
	CapPlatformOwnerGrant: {}, CapPlatformOperatorGrant: {}, CapPrincipalFlagsEdit: {},
	CapTenantRegister: {}, CapTenantTeardown: {}, CapTenantSuspend: {}, CapRoleResync: {},
}

var reservedCapabilities = map[Capability]struct{}{
	CapPrincipalCreate: {}, CapPrincipalEdit: {}, CapPrincipalDelete: {},
	CapMembershipAssign: {}, CapMembershipRevoke: {},
	CapRoleCreate: {}, CapRoleEdit: {}, CapRoleDelete: {},
	CapPlatformOwnerGrant: {}, CapPlatformOperatorGrant: {}, CapPrincipalFlagsEdit: {},
	CapTenantRegister: {}, CapTenantTeardown: {}, CapTenantSuspend: {}, CapRoleResync: {},
}

var platformSensitiveCapabilities = map[Capability]struct{}{
	CapPlatformOwnerGrant:    {},
	CapPlatformOperatorGrant: {},
	CapPrincipalFlagsEdit:    {},
}

// Registered reports whether c is a known capability code.
func (c Capability) Registered() bool {
	_, ok := capabilityRegistry[c]
	return ok
}

// Reserved reports whether c may never appear in a custom role. All
// principal/membership/role management codes and all platform.* codes are
// reserved; the corresponding view codes are not.
func (c Capability) Reserved() bool {
	_, ok := reservedCapabilities[c]
	return ok
}

// PlatformSensitive reports whether c is denied to platform operators even in
// the platform context: granting platform flags or editing the privilege
// flags of any principal (their own included).
func (c Capability) PlatformSensitive() bool {
	_, ok := platformSensitiveCapabilities[c]
	return ok
}

// Capabilities returns every registered code in lexical order.
func Capabilities() []Capability {
	out := make([]Capability, 0, len(capabilityRegistry))
	for c := range capabilityRegistry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CapabilitySet is an unordered set of capability codes.
type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

func (s CapabilitySet) Contains(c Capability) bool {
	_, ok := s[c]
	return ok
}

// SubsetOf reports whether every capability in s is also in other.
func (s CapabilitySet) SubsetOf(other CapabilitySet) bool {
	for c := range s {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Union returns a new set containing s plus extra.
func (s CapabilitySet) Union(extra ...Capability) CapabilitySet {
	out := make(CapabilitySet, len(s)+len(extra))
	for c := range s {
		out[c] = struct{}{}
	}
	for _, c := range extra {
		out[c] = struct{}{}
	}
	return out
}

// Diff returns the capabilities present in s but absent from other, sorted.
func (s CapabilitySet) Diff(other CapabilitySet) []Capability {
	var out []Capability
	for c := range s {
		if !other.Contains(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sorted returns the set as a sorted slice.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the sorted codes as plain strings, for storage layers.
func (s CapabilitySet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, c := range sorted {
		out[i] = string(c)
	}
	return out
}

// CapabilitySetFromStrings rebuilds a set from stored codes. Unknown codes
// are kept (they fail Registered checks later) so storage round-trips are
// lossless.
func CapabilitySetFromStrings(codes []string) CapabilitySet {
	s := make(CapabilitySet, len(codes))
	for _, c := range codes {
		s[Capability(c)] = struct{}{}
	}
	return s
}
