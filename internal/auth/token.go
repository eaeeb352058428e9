// token.go

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized 调度方令牌无效
var ErrUnauthorized = errors.New("未授权")

// Claims 调度方令牌声明。令牌标识的是转发请求的服务，而不是玩家。
type Claims struct {
	Dispatcher string `json:"dispatcher"`
	jwt.RegisteredClaims
}

// Verifier 签发与校验 HS256 调度方令牌
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier 创建校验器，secret 为空时不做校验
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Enabled 是否启用校验
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Issue 为调度方签发令牌
func (v *Verifier) Issue(dispatcher string, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", fmt.Errorf("未配置令牌密钥")
	}
	now := v.now()
	claims := Claims{
		Dispatcher: dispatcher,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   dispatcher,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌并返回声明
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return &claims, nil
}

// BearerToken 从 Authorization 头或 token 查询参数读取令牌
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// Middleware 校验调度方令牌，/health 不需要令牌
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !v.Enabled() || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		token := BearerToken(r)
		if token == "" {
			writeUnauthorized(w, "缺少调度方令牌")
			return
		}
		if _, err := v.Verify(token); err != nil {
			writeUnauthorized(w, "调度方令牌无效")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
		"code":    "UNAUTHORIZED",
	})
}
