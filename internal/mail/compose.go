package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// deadlineFormat is how deadlines appear in reminder emails.
const deadlineFormat = "Monday, 2 Jan 2006 at 15:04 MST"

// ReminderInput carries what a deadline reminder needs.
type ReminderInput struct {
	AssigneeName string
	TaskTitle    string
	Topic        string // optional
	Deadline     time.Time
}

// ModerationInput carries what a moderation-result notification needs.
type ModerationInput struct {
	AuthorName  string
	AuthorEmail string
	AvatarURL   string // optional
	PostTitle   string
	PostSummary string // optional
	Approved    bool
	FeedbackURL string // optional
	SiteURL     string // optional, rendered in the footer
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #333;">
  <h2>Deadline reminder</h2>
  <p>Hi {{.AssigneeName}},</p>
  <p>Your task <strong>{{.TaskTitle}}</strong>{{if .Topic}} (topic: {{.Topic}}){{end}}
  is due on <strong>{{.DeadlineFormatted}}</strong>.</p>
  <p>Please update its progress or reach out to your editor if the deadline is at risk.</p>
</body>
</html>`))

var moderationTmpl = template.Must(template.New("moderation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #333;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr>
      {{if .AvatarURL}}<td width="56"><img src="{{.AvatarURL}}" width="48" height="48" style="border-radius: 24px;" alt=""></td>{{end}}
      <td><h2 style="margin: 0;">Hello {{.AuthorName}}</h2></td>
    </tr>
  </table>
  <p>Your post <strong>{{.PostTitle}}</strong> has been
  {{if .Approved}}<span style="color: #2e7d32;">approved</span>{{else}}<span style="color: #c62828;">rejected</span>{{end}}.</p>
  {{if .PostSummary}}<blockquote style="border-left: 3px solid #ddd; padding-left: 12px; color: #666;">{{.PostSummary}}</blockquote>{{end}}
  {{if .FeedbackURL}}<p><a href="{{.FeedbackURL}}">Read the editor's feedback</a></p>{{end}}
  {{if .SiteURL}}<p style="font-size: 12px; color: #999;"><a href="{{.SiteURL}}">{{.SiteURL}}</a></p>{{end}}
</body>
</html>`))

// ComposeReminder builds the deadline reminder message for a task
// assignee. The subject carries the task title; the body carries the
// formatted deadline and the topic when present.
func ComposeReminder(to string, in ReminderInput) (Message, error) {
	data := struct {
		ReminderInput
		DeadlineFormatted string
	}{
		ReminderInput:     in,
		DeadlineFormatted: in.Deadline.UTC().Format(deadlineFormat),
	}

	var body strings.Builder
	if err := reminderTmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render reminder: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Reminder: %q is due soon", in.TaskTitle),
		HTML:    body.String(),
	}, nil
}

// ComposeModerationResult builds the approve/reject notification for a
// post author.
func ComposeModerationResult(in ModerationInput) (Message, error) {
	var body strings.Builder
	if err := moderationTmpl.Execute(&body, in); err != nil {
		return Message{}, fmt.Errorf("failed to render moderation result: %w", err)
	}

	verdict := "approved"
	if !in.Approved {
		verdict = "rejected"
	}

	return Message{
		To:      in.AuthorEmail,
		Subject: fmt.Sprintf("Your post %q was %s", in.PostTitle, verdict),
		HTML:    body.String(),
	}, nil
}
