package middleware

import (
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	adapter "github.com/gwatts/gin-adapter"
)

// userIDKey is where test doubles may pre-set the authenticated user.
const userIDKey = "user_id"

// Auth validates bearer tokens against the identity provider and
// rejects unauthenticated requests.
func Auth(domain, audience string) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
	)
	if err != nil {
		return nil, err
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED","message":"Authentication required"}`))
		}),
	)

	return adapter.Wrap(mw.CheckJWT), nil
}

// GetUserID returns the authenticated user's id. It prefers a value
// set directly on the gin context (test middleware), falling back to
// the subject of the validated JWT.
func GetUserID(c *gin.Context) (string, bool) {
	if v, exists := c.Get(userIDKey); exists {
		if id, ok := v.(string); ok && id != "" {
			return id, true
		}
	}

	claims, ok := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

// SetUserID stamps the authenticated user onto the gin context. Used
// by test auth middleware.
func SetUserID(c *gin.Context, id string) {
	c.Set(userIDKey, id)
}
