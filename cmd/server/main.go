package main

import (
	"log"
	"os"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/handlers"
	"github.com/manankohlii/manage-my-parents-sub000/internal/middleware"
	"github.com/manankohlii/manage-my-parents-sub000/internal/router"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	db.Init()
	handlers.InitGoogleOAuth()

	r := gin.Default()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "manage-my-parents-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("mmp_session", store))
	r.Use(middleware.LoadUser())

	router.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("listening on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
