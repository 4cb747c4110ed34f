package stack

import "github.com/jmylchreest/toaststack/internal/notification"

// NotifyLegacy is the positional form of Notify kept for callers written
// against the older API. Empty strings and nil callbacks are left unset.
func (c *Coordinator) NotifyLegacy(
	title, text, url, icon string,
	onClick func(notification.ClickEvent),
	onShow func(notification.ShowEvent),
	onClose func(notification.CloseEvent),
) int64 {
	return c.Notify(notification.Request{
		Title:   title,
		Body:    text,
		Link:    url,
		Icon:    icon,
		OnClick: onClick,
		OnShow:  onShow,
		OnClose: onClose,
	})
}
