package apitest

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

type accessClaims struct {
	Gen int `json:"gen"`
	jwt.RegisteredClaims
}

type refreshToken struct {
	userID    int64
	expiresAt time.Time
}

// generateAccessTokenLocked подписывает HS256 access-токен текущего поколения.
func (s *Server) generateAccessTokenLocked(userID int64, now time.Time) (string, error) {
	const op = "apitest.generateAccessToken"

	claims := accessClaims{
		Gen: s.gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// validateAccessTokenLocked проверяет подпись, срок и поколение токена.
func (s *Server) validateAccessTokenLocked(tokenStr string) (int64, error) {
	const op = "apitest.validateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%s: %w", op, errTokenExpired)
		}

		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}
	if claims.Gen != s.gen {
		return 0, fmt.Errorf("%s: %w", op, errTokenExpired)
	}

	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}
	if _, ok := s.users[uid]; !ok {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}

	return uid, nil
}

// generateRefreshTokenLocked создаёт случайный refresh-токен; хранится только его хэш.
func (s *Server) generateRefreshTokenLocked(userID int64, now time.Time) (string, error) {
	const op = "apitest.generateRefreshToken"

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	plain := base64.RawURLEncoding.EncodeToString(b)

	s.refresh[hashToken(plain)] = refreshToken{
		userID:    userID,
		expiresAt: now.Add(s.refreshTTL),
	}

	return plain, nil
}

// consumeRefreshTokenLocked проверяет refresh-токен и удаляет его (ротация).
func (s *Server) consumeRefreshTokenLocked(plain string, now time.Time) (int64, error) {
	const op = "apitest.consumeRefreshToken"

	h := hashToken(plain)
	rt, ok := s.refresh[h]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}
	delete(s.refresh, h)

	if now.After(rt.expiresAt) {
		return 0, fmt.Errorf("%s: %w", op, errTokenExpired)
	}
	if _, ok := s.users[rt.userID]; !ok {
		return 0, fmt.Errorf("%s: %w", op, errInvalidToken)
	}

	return rt.userID, nil
}

// issueSessionLocked выдаёт пару токенов: refresh — в cookie, access — в ответ.
func (s *Server) issueSessionLocked(w http.ResponseWriter, userID int64) (string, error) {
	now := time.Now().UTC()

	access, err := s.generateAccessTokenLocked(userID, now)
	if err != nil {
		return "", err
	}

	plain, err := s.generateRefreshTokenLocked(userID, now)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    plain,
		Path:     "/",
		MaxAge:   int(s.refreshTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return access, nil
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) revokeUserRefreshLocked(userID int64) {
	for h, rt := range s.refresh {
		if rt.userID == userID {
			delete(s.refresh, h)
		}
	}
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
