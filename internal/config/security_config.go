// config/security_config.go
package config

import "slices"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

const (
	RoleSales   = "sales"
	RoleFinance = "finance"
	RoleAdmin   = "admin"
	RoleSystem  = "system"
)

// EndpointPolicy is the authentication level of a method and, when Roles is
// not empty, the roles of which the caller must hold at least one.
type EndpointPolicy struct {
	Level SecurityLevel
	Roles []string
}

var (
	access      = EndpointPolicy{Level: SecurityAccess}
	financeOnly = EndpointPolicy{Level: SecurityAccess, Roles: []string{RoleFinance, RoleAdmin}}
	systemOnly  = EndpointPolicy{Level: SecurityAccess, Roles: []string{RoleSystem}}
	operators   = EndpointPolicy{Level: SecurityAccess, Roles: []string{RoleSystem, RoleAdmin}}
)

// EndpointSecurityConfig maps methods to their security policy
var EndpointSecurityConfig = map[string]EndpointPolicy{
	// Health - Public
	"/grpc.health.v1.Health/Check": {Level: SecurityPublic},

	// ReservationService
	"/salesledger.v1.ReservationService/Reserve":        access,
	"/salesledger.v1.ReservationService/Release":        access,
	"/salesledger.v1.ReservationService/GetUnit":        access,
	"/salesledger.v1.ReservationService/ReleaseExpired": operators,

	// DealService
	"/salesledger.v1.DealService/CreateDeal":        access,
	"/salesledger.v1.DealService/SignContract":      access,
	"/salesledger.v1.DealService/CompleteDeal":      access,
	"/salesledger.v1.DealService/CancelDeal":        access,
	"/salesledger.v1.DealService/GetDeal":           access,
	"/salesledger.v1.DealService/ListDealsByUnit":   access,
	"/salesledger.v1.DealService/ListDealsByStatus": access,
	"/salesledger.v1.DealService/GetDealByToken":    {Level: SecurityPublic},

	// InstallmentService
	"/salesledger.v1.InstallmentService/GenerateInstallments": access,
	"/salesledger.v1.InstallmentService/ListInstallments":     access,
	"/salesledger.v1.InstallmentService/RecordPayment":        financeOnly,
	"/salesledger.v1.InstallmentService/MarkOverdue":          operators,

	// WalletService
	"/salesledger.v1.WalletService/GetWallet":          access,
	"/salesledger.v1.WalletService/ListTransactions":   access,
	"/salesledger.v1.WalletService/Credit":             systemOnly,
	"/salesledger.v1.WalletService/PromoteToAvailable": financeOnly,
	"/salesledger.v1.WalletService/VerifyWallet":       financeOnly,

	// PayoutService
	"/salesledger.v1.PayoutService/RequestPayout":       access,
	"/salesledger.v1.PayoutService/GetPayout":           access,
	"/salesledger.v1.PayoutService/ProcessPayout":       financeOnly,
	"/salesledger.v1.PayoutService/ListPayoutsByStatus": financeOnly,

	// TaskEventService - pushed by the task subsystem
	"/salesledger.v1.TaskEventService/TaskApproved":       systemOnly,
	"/salesledger.v1.TaskEventService/TaskFinalApproved":  systemOnly,
	"/salesledger.v1.TaskEventService/MilestoneCompleted": systemOnly,
}

// GetEndpointPolicy returns the security policy for a given method
func GetEndpointPolicy(method string) EndpointPolicy {
	if policy, exists := EndpointSecurityConfig[method]; exists {
		return policy
	}
	// Default to highest security for unknown endpoints
	return EndpointPolicy{Level: SecurityAccess, Roles: []string{RoleAdmin}}
}

// Allows reports whether a caller holding roles satisfies the policy.
func (p EndpointPolicy) Allows(roles []string) bool {
	if len(p.Roles) == 0 {
		return true
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// IsKnownRole reports whether role is one the policies recognise.
func IsKnownRole(role string) bool {
	switch role {
	case RoleSales, RoleFinance, RoleAdmin, RoleSystem:
		return true
	}
	return false
}
