package emote

import "fmt"

// NotFoundError reports a requested name, id or channel the provider did not return.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("emote %s %q not found", e.Kind, e.Key)
}
