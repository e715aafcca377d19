package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

const signedURLAudience = "document"

type objectClaims struct {
	Bucket string `json:"bkt"`
	Path   string `json:"path"`
	jwt.RegisteredClaims
}

// URLSigner mints capability URLs of the form
// <base>/documents/<bucket>/<path>?token=<jwt>.
type URLSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

func NewURLSigner(secret, baseURL string) *URLSigner {
	return &URLSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *URLSigner) Sign(bucket, objectPath string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	now := s.now()
	claims := objectClaims{
		Bucket: bucket,
		Path:   objectPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{signedURLAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign object token")
	}

	segments := strings.Split(objectPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/documents/%s/%s?token=%s",
		s.baseURL, url.PathEscape(bucket), strings.Join(segments, "/"), url.QueryEscape(token)), nil
}

// Verify checks that token grants access to exactly bucket/objectPath and has
// not expired.
func (s *URLSigner) Verify(token, bucket, objectPath string) error {
	var claims objectClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(signedURLAudience),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return errors.Wrap(err, "parse object token")
	}
	if claims.Bucket != bucket || claims.Path != objectPath {
		return errors.New("token is scoped to another object")
	}
	return nil
}
