// Package domain defines the core business entities of the editorial
// back office: users, tasks, task comments, posts and activity log entries,
// along with their validation rules.
package domain
