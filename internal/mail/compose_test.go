package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeReminder(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, time.March, 9, 17, 30, 0, 0, time.UTC)

	t.Run("with topic", func(t *testing.T) {
		t.Parallel()

		msg, err := ComposeReminder("writer@example.com", ReminderInput{
			AssigneeName: "Sam Writer",
			TaskTitle:    "Write launch recap",
			Topic:        "Product",
			Deadline:     deadline,
		})
		require.NoError(t, err)

		assert.Equal(t, "writer@example.com", msg.To)
		assert.Equal(t, `Reminder: "Write launch recap" is due soon`, msg.Subject)
		assert.Contains(t, msg.HTML, "Sam Writer")
		assert.Contains(t, msg.HTML, "Write launch recap")
		assert.Contains(t, msg.HTML, "topic: Product")
		assert.Contains(t, msg.HTML, "Monday, 9 Mar 2026 at 17:30 UTC")
	})

	t.Run("without topic", func(t *testing.T) {
		t.Parallel()

		msg, err := ComposeReminder("writer@example.com", ReminderInput{
			AssigneeName: "Sam Writer",
			TaskTitle:    "Write launch recap",
			Deadline:     deadline,
		})
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "topic:")
	})

	t.Run("escapes markup in input", func(t *testing.T) {
		t.Parallel()

		msg, err := ComposeReminder("writer@example.com", ReminderInput{
			AssigneeName: "<script>alert(1)</script>",
			TaskTitle:    "ok",
			Deadline:     deadline,
		})
		require.NoError(t, err)
		assert.NotContains(t, msg.HTML, "<script>")
	})
}

func TestComposeModerationResult(t *testing.T) {
	t.Parallel()

	base := ModerationInput{
		AuthorName:  "Alex Author",
		AuthorEmail: "author@example.com",
		PostTitle:   "Shipping the redesign",
		PostSummary: "What changed and why",
		SiteURL:     "https://blog.example.com",
	}

	t.Run("approved", func(t *testing.T) {
		t.Parallel()

		in := base
		in.Approved = true
		in.AvatarURL = "https://cdn.example.com/avatar.png"
		in.FeedbackURL = "https://blog.example.com/feedback/42"

		msg, err := ComposeModerationResult(in)
		require.NoError(t, err)

		assert.Equal(t, "author@example.com", msg.To)
		assert.Equal(t, `Your post "Shipping the redesign" was approved`, msg.Subject)
		assert.Contains(t, msg.HTML, "Alex Author")
		assert.Contains(t, msg.HTML, "approved")
		assert.Contains(t, msg.HTML, "https://cdn.example.com/avatar.png")
		assert.Contains(t, msg.HTML, "https://blog.example.com/feedback/42")
		assert.Contains(t, msg.HTML, "What changed and why")
		assert.Contains(t, msg.HTML, "https://blog.example.com")
	})

	t.Run("rejected without extras", func(t *testing.T) {
		t.Parallel()

		msg, err := ComposeModerationResult(base)
		require.NoError(t, err)

		assert.Equal(t, `Your post "Shipping the redesign" was rejected`, msg.Subject)
		assert.Contains(t, msg.HTML, "rejected")
		assert.NotContains(t, msg.HTML, "<img")
		assert.NotContains(t, msg.HTML, "feedback")
	})
}
