/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logic

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies signed login tokens. A token binds a
// uuid so a client can resume without re-sending its password.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. An empty secret disables
// token login entirely; Issue and Verify then fail.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Enabled reports whether tokens can be issued and verified.
func (tm *TokenManager) Enabled() bool { return len(tm.secret) > 0 }

// Issue signs a new token for uuid.
func (tm *TokenManager) Issue(uuid string) (string, error) {
	if !tm.Enabled() {
		return "", fmt.Errorf("token login is not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uuid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		Issuer:    "flychat",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify validates a token and returns the uuid it was issued for.
func (tm *TokenManager) Verify(token string) (string, error) {
	if !tm.Enabled() {
		return "", fmt.Errorf("token login is not configured")
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token carries no subject")
	}
	return claims.Subject, nil
}
