package echoapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Shubham414kumar/vidyasphere/core"
	"github.com/Shubham414kumar/vidyasphere/core/user"
)

const (
	sessionKey     = "session"
	bearerScheme   = "Bearer"
	tokenAudience  = "VidyaSphere"
	stateAudience  = "oauth-state"
	stateExpiresIn = 10 * time.Minute
	stateCookie    = "oauth_state"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Email        string   `json:"email,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// Session is the signed-in identity of a request, built from a valid, non-revoked access token.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`

	origIssuedAt int64
}

func (s Session) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, want := range roles {
		for _, role := range s.Roles {
			if role == want {
				return true
			}
		}
	}
	return false
}

func (s Session) IsAdmin() bool { return s.HasAnyRole(user.RoleAdmin) }

func (s Session) person() core.LogPerson {
	return core.LogPerson{ID: s.UserID, Email: s.Email}
}

func GetUserClaims(usr user.User, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		Roles:        usr.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims jwt.Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw, secretKey string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid {
		return errInvalidToken
	}
	return nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get(echo.HeaderAuthorization)
	n := len(bearerScheme)
	if len(auth) > n+1 && strings.EqualFold(auth[:n], bearerScheme) && auth[n] == ' ' {
		return strings.TrimSpace(auth[n+1:])
	}
	return ""
}

// authMiddleware turns the bearer token into the request Session.
// With optional set, requests without a token pass through anonymously; a bad token is always rejected.
func authMiddleware(conf *core.Config, revocations core.RevocationStore, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := bearerToken(ctx.Request())
			if raw == "" {
				if optional {
					return next(ctx)
				}
				return errMissingToken
			}

			claims := new(Claims)
			if err := parseToken(raw, conf.SecretKey, claims); err != nil {
				return err
			}
			if claims.Id == "" || claims.Subject == "" || claims.Audience != tokenAudience {
				return errInvalidToken
			}
			revoked, err := revocations.IsRevoked(ctx.Request().Context(), claims.Id)
			if err != nil {
				return errors.Wrap(err, "checking token revocation")
			}
			if revoked {
				return errTokenRevoked
			}

			ctx.Set(sessionKey, Session{
				UserID:       claims.Subject,
				Email:        claims.Email,
				Roles:        claims.Roles,
				TokenID:      claims.Id,
				ExpiresAt:    time.Unix(claims.ExpiresAt, 0).UTC(),
				origIssuedAt: claims.OrigIssuedAt,
			})
			return next(ctx)
		}
	}
}

// CurrentSession returns the Session of an authenticated request.
func CurrentSession(ctx echo.Context) (Session, bool) {
	sess, ok := ctx.Get(sessionKey).(Session)
	return sess, ok
}

func mustSession(ctx echo.Context) (Session, error) {
	if sess, ok := CurrentSession(ctx); ok {
		return sess, nil
	}
	return Session{}, errUnauthorized
}

type tokenIssuer struct {
	conf *core.Config
}

func (ti tokenIssuer) issue(usr user.User, origIat ...int64) (string, error) {
	return GenerateToken(GetUserClaims(usr, ti.conf, origIat...), ti.conf.SecretKey)
}

// refresh issues a new token for an active user until the refresh window of the first token closes.
func (ti tokenIssuer) refresh(sess Session, usr user.User) (string, error) {
	if !usr.IsActive {
		return "", errAccountDeactivated
	}
	expTime := time.Unix(sess.origIssuedAt, 0).Add(ti.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}
	token, err := ti.issue(usr, sess.origIssuedAt)
	return token, errors.Wrap(err, "generating token")
}

type stateClaims struct {
	jwt.StandardClaims
	Nonce string `json:"nonce"`
}

// oauthState is a short-lived signed value echoed back by the OAuth provider.
// nonce goes to the browser in a cookie: the callback only accepts the state together with it.
func (ti tokenIssuer) oauthState() (state, nonce string, err error) {
	now := time.Now()
	nonce = uuid.New().String()
	state, err = GenerateToken(stateClaims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Audience:  stateAudience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(stateExpiresIn).Unix(),
		},
		Nonce: nonce,
	}, ti.conf.SecretKey)
	return state, nonce, err
}

func (ti tokenIssuer) checkOAuthState(state, nonce string) error {
	claims := new(stateClaims)
	if err := parseToken(state, ti.conf.SecretKey, claims); err != nil {
		return errInvalidOAuthState
	}
	if claims.Audience != stateAudience {
		return errInvalidOAuthState
	}
	if nonce == "" || subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return errInvalidOAuthState
	}
	return nil
}

func stateNonceCookie(ctx echo.Context, nonce string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     stateCookie,
		Value:    nonce,
		Path:     "/v1/auth/oauth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ctx.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	}
}
