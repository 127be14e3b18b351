package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOauthConfig *oauth2.Config

// InitGoogleOAuth configures the Google sign-in flow
func InitGoogleOAuth() {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	googleOauthConfig = &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  siteURL + "/api/login/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo mirrors the userinfo endpoint response
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin starts the OAuth dance
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate state token"})
		return
	}

	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	c.Redirect(http.StatusFound, googleOauthConfig.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth dance, creating the account on first
// sign-in and binding the session.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	expectedState, _ := session.Get("oauth_state").(string)
	session.Delete("oauth_state")
	session.Save()

	if expectedState == "" || c.Query("state") != expectedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
		return
	}

	resp, err := googleOauthConfig.Client(context.Background(), token).
		Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not fetch user info"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not read user info"})
		return
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected user info payload"})
		return
	}

	var user models.User
	err = db.DB.Where("google_id = ?", info.ID).First(&user).Error
	if err != nil {
		// Link to an existing account by email, or create a fresh one
		err = db.DB.Where("email = ?", info.Email).First(&user).Error
		if err != nil {
			user = models.User{
				Username:    info.Name,
				Email:       info.Email,
				Password:    utils.RandStringBytesMaskImpr(32), // unusable, OAuth-only account
				Avatar:      utils.GetRandomEmoji(),
				GoogleID:    info.ID,
				GoogleEmail: info.Email,
			}
			if err := db.DB.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
				return
			}
		} else {
			db.DB.Model(&user).Updates(map[string]interface{}{
				"google_id":    info.ID,
				"google_email": info.Email,
			})
		}
	}

	session.Set("user_id", user.ID)
	session.Save()

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "/"
	}
	c.Redirect(http.StatusFound, siteURL)
}
