package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"construction-sales-ledger/internal/config"
	"construction-sales-ledger/internal/logger"
	"construction-sales-ledger/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		policy := config.GetEndpointPolicy(info.FullMethod)

		// Public endpoint - skip auth
		if policy.Level == config.SecurityPublic {
			return handler(ctx, req)
		}

		// Extract token from metadata
		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		// Validate token
		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if !policy.Allows(claims.Roles) {
			logger.Warn("Role check failed", "method", info.FullMethod, "userID", claims.UserID, "roles", claims.Roles)
			return nil, status.Errorf(codes.PermissionDenied, "one of roles %v required", policy.Roles)
		}

		// Inject the identity into context. We use a Copy to avoid side effects
		// and Set to overwrite any identity headers sent by the client.
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}

		md.Set("user-id", claims.UserID)
		md.Set("user-roles", strings.Join(claims.Roles, ","))
		newCtx := metadata.NewIncomingContext(ctx, md)
		newCtx = logger.WithContextAttrs(newCtx, "user_id", claims.UserID, "rpc", info.FullMethod)

		return handler(newCtx, req)
	}
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}
