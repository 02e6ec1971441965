// Package notifications delivers archive outcomes via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and degrades to a no-op when no topic is set. Archived and failure messages
// can be switched off independently. Notifications are outbound only.
package notifications
