package services

import "bazaar/contexts/identity-access/access-guard/ports"

// TierMap is an immutable role-to-rank mapping. Authorization passes when
// the caller's tier is at least the minimum tier among the allowed roles.
type TierMap struct {
	tiers map[ports.Role]int
}

// DefaultTiers returns the platform role hierarchy.
// buyer and seller rank equally; capability checks tell them apart.
func DefaultTiers() TierMap {
	return NewTierMap(map[ports.Role]int{
		ports.RoleUser:     1,
		ports.RoleBuyer:    2,
		ports.RoleSeller:   2,
		ports.RoleSubadmin: 3,
		ports.RoleAdmin:    4,
	})
}

func NewTierMap(tiers map[ports.Role]int) TierMap {
	copied := make(map[ports.Role]int, len(tiers))
	for role, tier := range tiers {
		copied[role] = tier
	}
	return TierMap{tiers: copied}
}

// Tier returns the rank for a role; unknown roles rank zero.
func (m TierMap) Tier(role ports.Role) int {
	return m.tiers[role]
}

// MinAllowedTier computes the lowest tier among the allowed roles.
// An empty allowed set yields zero, which every known role satisfies.
func (m TierMap) MinAllowedTier(allowed []ports.Role) int {
	min := 0
	for i, role := range allowed {
		tier := m.tiers[role]
		if i == 0 || tier < min {
			min = tier
		}
	}
	return min
}

// Allows reports whether the caller role clears the allowed set.
func (m TierMap) Allows(caller ports.Role, allowed ...ports.Role) bool {
	callerTier := m.tiers[caller]
	if callerTier == 0 {
		return false
	}
	return callerTier >= m.MinAllowedTier(allowed)
}
