package accounts

import "context"

type noopNotifier struct{}

func (noopNotifier) SendActivation(context.Context, string, string) error    { return nil }
func (noopNotifier) SendPasswordReset(context.Context, string, string) error { return nil }

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
