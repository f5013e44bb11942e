// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined by the consumers.
package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the payload embedded inside an access token.
//
// The subject claim carries the username. No custom claims are needed:
// the principal is always re-resolved against the credential store on
// every request, so the token stays minimal.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed JWT access tokens.
//
// # Statelessness
//
// Tokens are never stored server-side. Validity is entirely self-contained:
// signature plus expiry check at verification time.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenService creates a new TokenService.
//
// The TTL is a fixed configuration value applied to every issued token.
func NewTokenService(secret string, ttl time.Duration, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sec: token TTL must be positive, got %s", ttl)
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}, nil
}

// Issue creates a signed access token for the given subject.
//
// The expiry claim is set to now + the configured TTL.
func (service *TokenService) Issue(subject string) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a JWT string.
func (service *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}

// Validate reports whether the token is currently acceptable.
//
// A forged signature, a structurally malformed token, and an expired token
// all collapse into the same false result. Callers that need the subject
// must use [TokenService.Verify] instead.
func (service *TokenService) Validate(tokenString string) bool {
	_, err := service.Verify(tokenString)
	return err == nil
}

// ParseExpiry extracts the expiry claim without verifying the signature.
//
// It is used for informational responses only (e.g. echoing the expiry in
// the login payload). Access decisions must go through [TokenService.Verify].
func (service *TokenService) ParseExpiry(tokenString string) (time.Time, error) {
	claims := &Claims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, fmt.Errorf("sec: malformed token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("sec: token has no expiry claim")
	}

	return claims.ExpiresAt.Time, nil
}
