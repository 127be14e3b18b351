package router

import (
	"net/http"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/handlers"
	"github.com/manankohlii/manage-my-parents-sub000/internal/middleware"
	"github.com/manankohlii/manage-my-parents-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every handler onto the engine. Anything that
// writes, or that reads private group content, sits behind AuthRequired.
func RegisterRoutes(r *gin.Engine) {
	votes := services.NewVoteService(db.DB)
	stats := services.NewOptimisticStats(votes)
	mail := services.NewMailService()
	notify := services.NewNotificationService(db.DB, mail)
	tags := services.NewTagService(db.DB)
	groups := services.NewGroupService(db.DB)
	challenges := services.NewChallengeService(db.DB, tags, groups)
	solutions := services.NewSolutionService(db.DB)
	bookmarks := services.NewBookmarkService(db.DB)
	chat := services.NewChatService(db.DB, groups)

	auth := handlers.NewAuthHandler()
	challenge := handlers.NewChallengeHandler(challenges, solutions, votes, stats, bookmarks)
	solution := handlers.NewSolutionHandler(solutions, challenges, votes, notify)
	vote := handlers.NewVoteHandler(stats)
	group := handlers.NewGroupHandler(groups, challenges, solutions, votes, notify)
	chatH := handlers.NewChatHandler(chat, groups)
	tag := handlers.NewTagHandler(tags)
	user := handlers.NewUserHandler(challenges)
	notification := handlers.NewNotificationHandler(notify)
	bookmark := handlers.NewBookmarkHandler(bookmarks, challenges)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/register", auth.Register)
		api.POST("/login", auth.Login)
		api.POST("/logout", auth.Logout)
		api.GET("/login/google", auth.GoogleLogin)
		api.GET("/login/google/callback", auth.GoogleCallback)

		api.GET("/challenges", challenge.List)
		api.GET("/challenges/:pid", challenge.Detail)
		api.GET("/challenges/:pid/solutions", solution.Thread)
		api.GET("/tags", tag.List)
		api.GET("/users/:username", user.Profile)
		api.GET("/emojis", user.Emojis)
		api.GET("/votes/:subject/:id", vote.View)
	}

	authed := r.Group("/api", middleware.AuthRequired())
	{
		authed.GET("/me", auth.Me)
		authed.PUT("/me/settings", user.UpdateSettings)
		authed.PUT("/me/password", user.ChangePassword)

		authed.POST("/challenges", challenge.Create)
		authed.PUT("/challenges/:pid", challenge.Update)
		authed.DELETE("/challenges/:pid", challenge.Delete)
		authed.POST("/challenges/:pid/solutions", solution.Create)
		authed.PUT("/solutions/:id", solution.Update)
		authed.DELETE("/solutions/:id", solution.Delete)

		authed.POST("/votes", vote.Cast)

		authed.POST("/challenges/:pid/bookmark", bookmark.Toggle)
		authed.GET("/bookmarks", bookmark.ListMine)

		authed.GET("/notifications", notification.List)
		authed.PUT("/notifications/:id/read", notification.MarkRead)
		authed.PUT("/notifications/read-all", notification.MarkAllRead)
		authed.DELETE("/notifications/:id", notification.Delete)

		authed.POST("/groups", group.Create)
		authed.GET("/groups", group.ListMine)
		authed.GET("/groups/:gid", group.Detail)
		authed.DELETE("/groups/:gid", group.Delete)
		authed.POST("/groups/:gid/leave", group.Leave)
		authed.POST("/groups/:gid/invitations", group.Invite)
		authed.GET("/invitations", group.ListInvitations)
		authed.PUT("/invitations/:id", group.Respond)

		authed.GET("/groups/:gid/challenges", group.ListChallenges)
		authed.POST("/groups/:gid/challenges", group.CreateChallenge)
		authed.GET("/group-challenges/:pid", group.ChallengeDetail)
		authed.PUT("/group-challenges/:pid", group.UpdateChallenge)
		authed.DELETE("/group-challenges/:pid", group.DeleteChallenge)
		authed.POST("/group-challenges/:pid/solutions", group.CreateSolution)
		authed.PUT("/group-solutions/:id", group.UpdateSolution)
		authed.DELETE("/group-solutions/:id", group.DeleteSolution)

		authed.GET("/groups/:gid/messages", chatH.History)
		authed.POST("/groups/:gid/messages", chatH.Post)
		authed.GET("/groups/:gid/messages/stream", chatH.Stream)
	}
}
