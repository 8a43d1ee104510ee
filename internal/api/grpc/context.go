package grpc

import (
	"context"
	"slices"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"construction-sales-ledger/internal/config"
)

const (
	userIDHeader    = "user-id"
	userRolesHeader = "user-roles"
)

// GetUserIDFromContext extracts the user ID from the gRPC metadata.
// It expects a header named "user-id", set by the auth interceptor.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(userIDHeader)
	if len(userIDs) == 0 || userIDs[0] == "" {
		return "", status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}
	return userIDs[0], nil
}

// GetRolesFromContext returns the roles the auth interceptor attached.
func GetRolesFromContext(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	var roles []string
	for _, v := range md.Get(userRolesHeader) {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
	}
	return roles
}

// WithIdentity returns ctx carrying the caller identity the way the auth
// interceptor attaches it. Client supplied values are overwritten.
func WithIdentity(ctx context.Context, userID string, roles []string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(userIDHeader, userID)
	md.Set(userRolesHeader, strings.Join(roles, ","))
	return metadata.NewIncomingContext(ctx, md)
}

// resolveOwner returns requested, or the caller when requested is empty.
// Reading another owner's records needs the finance or admin role.
func resolveOwner(ctx context.Context, requested string) (string, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if requested == "" || requested == userID {
		return userID, nil
	}
	if hasRole(ctx, config.RoleFinance, config.RoleAdmin) {
		return requested, nil
	}
	return "", status.Error(codes.PermissionDenied, "cannot access another owner's wallet")
}

// hasRole reports whether the caller holds any of roles.
func hasRole(ctx context.Context, roles ...string) bool {
	for _, r := range GetRolesFromContext(ctx) {
		if slices.Contains(roles, r) {
			return true
		}
	}
	return false
}
