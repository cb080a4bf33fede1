// Package platform sends desktop notifications through the host's
// notification service.
package platform

import "time"

// DefaultAppName identifies the sender when Options.AppName is empty.
const DefaultAppName = "grademark"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName is shown as the sending application where supported.
	AppName string
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Expire is how long the notification stays visible. Zero selects five
	// seconds.
	Expire time.Duration
	// Category is the freedesktop category hint, e.g. "transfer.complete".
	Category string
}

func (o Options) appName() string {
	if o.AppName == "" {
		return DefaultAppName
	}
	return o.AppName
}

func (o Options) expireMillis() int32 {
	if o.Expire <= 0 {
		return 5000
	}
	return int32(o.Expire / time.Millisecond)
}

// hints returns the freedesktop hint map for the options.
func (o Options) hints() map[string]any {
	h := map[string]any{}
	if o.Category != "" {
		h["category"] = o.Category
	}
	if o.IconPath != "" {
		h["image-path"] = o.IconPath
	}
	return h
}
