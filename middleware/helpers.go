package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Имя JWT claim, который выписывает AuthHandler.Login. Пользователь во всех
// операциях идентифицируется по username; числовой user_id из токена
// серверной стороной не используется.
const jwtClaimUsername = "username"

func GetUsernameFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context or invalid type")
	}

	usernameClaim, ok := claims[jwtClaimUsername]
	if !ok {
		return "", fmt.Errorf("missing %q claim in token", jwtClaimUsername)
	}

	username, ok := usernameClaim.(string)
	if !ok || username == "" {
		return "", fmt.Errorf("invalid %q claim in token", jwtClaimUsername)
	}
	return username, nil
}
