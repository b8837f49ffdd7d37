package utils

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Notice is a queued user-facing message with a dedupe tag.
type Notice struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

const noticesKey = "notices"

// PushNotice queues a notice on the session unless one with the same tag is
// already pending. At most one notice per tag is ever outstanding, so
// re-entrant evaluation cannot duplicate a warning.
func PushNotice(c *gin.Context, tag, text string) error {
	session := sessions.Default(c)
	notices, _ := session.Get(noticesKey).([]Notice)
	for _, notice := range notices {
		if notice.Tag == tag {
			return nil
		}
	}
	notices = append(notices, Notice{Tag: tag, Text: text})
	session.Set(noticesKey, notices)
	return session.Save()
}

// PopNotices drains all pending notices from the session.
func PopNotices(c *gin.Context) []Notice {
	session := sessions.Default(c)
	notices, _ := session.Get(noticesKey).([]Notice)
	if len(notices) == 0 {
		return nil
	}
	session.Delete(noticesKey)
	if err := session.Save(); err != nil {
		LogError("Failed to drain notices from session: %v", err)
	}
	return notices
}
