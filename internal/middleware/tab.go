package middleware

import (
	"net/http"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/James9b/fake-api-ecommerce/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	TabCookieName = "tab_id"

	tabIDKey   = "tabID"
	sessionKey = "session"
)

// TabSession identifies the browser tab by its cookie, minting a new id when the cookie is
// missing or malformed, and restores that tab's session for the rest of the chain.
func TabSession(backend domain.SessionBackend, secureCookie bool, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabID, err := c.Cookie(TabCookieName)
		if err == nil {
			_, err = uuid.Parse(tabID)
		}
		if err != nil {
			tabID = uuid.NewString()
			log.Debugf("Middleware: Issued new tab id %s", tabID)
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(TabCookieName, tabID, 0, "/", "", secureCookie, true)
		}

		store, err := session.NewStore(c.Request.Context(), backend.Scope(tabID), log)
		if err != nil {
			log.Errorf("Middleware: Failed to restore session for tab %s: %v", tabID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"Status": "Fail", "Message": "Session storage unavailable"})
			return
		}

		c.Set(tabIDKey, tabID)
		c.Set(sessionKey, store)
		c.Next()
	}
}

// RequireLogin sends visitors without a session to the login page.
func RequireLogin(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := Session(c)
		if store == nil || !store.IsLoggedIn() {
			log.Debugf("Middleware: Redirecting anonymous request for %s to /login", c.Request.URL.Path)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Session returns the tab session set by TabSession, or nil outside that middleware.
func Session(c *gin.Context) *session.Store {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	store, _ := v.(*session.Store)
	return store
}

func TabID(c *gin.Context) string {
	return c.GetString(tabIDKey)
}
