package utils

import (
	"math/rand"
	"time"
)

// GetDaysSinceJoined returns whole days since the account was created
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// GetRandomEmoji returns a random emoji used as the default avatar
func GetRandomEmoji() string {
	emojis := []string{"🌻", "🌼", "🌷", "🍀", "🌳", "🏡", "☕", "🧩", "🐢", "🦉", "🐨", "🐸"}
	return emojis[rand.Intn(len(emojis))]
}

// GetCommonEmojis returns the avatar choices offered in settings
func GetCommonEmojis() []string {
	return []string{
		"🌻", "🌼", "🌷", "🍀", "🌳", "🏡", "☕", "🧩",
		"🐢", "🦉", "🐨", "🐸", "🐼", "🦊", "🐱", "🐶",
		"😀", "😃", "😄", "😁", "😊", "😎", "🤓", "🧐",
		"👨‍👩‍👧", "👩‍👦", "🧑‍🦳", "👴", "👵", "🧑‍⚕️", "🧑‍🏫", "🧙",
		"⭐", "✨", "💡", "🤝", "🎯", "💬", "📖", "🏆",
	}
}
