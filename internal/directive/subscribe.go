package directive

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"busindex/subscriber"
)

const (
	// Namespace is the directive namespace recognised by busindex.
	Namespace = "eventbus"
	// NameSubscribe marks a subscriber method.
	NameSubscribe = "subscribe"
)

// Subscribe is the decoded payload of //eventbus:subscribe.
type Subscribe struct {
	ThreadMode subscriber.ThreadMode
	Priority   int
	Sticky     bool
}

// DecodeSubscribe validates the arguments of a subscribe directive.
// Recognised keys: mode, priority, sticky. A bare `sticky` means true.
func DecodeSubscribe(d Directive) (Subscribe, error) {
	var out Subscribe
	for _, arg := range d.Args {
		switch strings.ToLower(arg.Key) {
		case "mode", "thread", "threadmode":
			if !arg.HasValue {
				return Subscribe{}, fmt.Errorf("%s requires a value", arg.Key)
			}
			mode, err := subscriber.ParseThreadMode(arg.Value)
			if err != nil {
				return Subscribe{}, err
			}
			out.ThreadMode = mode
		case "priority":
			if !arg.HasValue {
				return Subscribe{}, fmt.Errorf("priority requires a value")
			}
			n, err := strconv.ParseInt(arg.Value, 10, 64)
			if err != nil {
				return Subscribe{}, fmt.Errorf("priority %q is not an integer", arg.Value)
			}
			p, err := safecast.Conv[int32](n)
			if err != nil {
				return Subscribe{}, fmt.Errorf("priority %q is out of range: %w", arg.Value, err)
			}
			out.Priority = int(p)
		case "sticky":
			if !arg.HasValue {
				out.Sticky = true
				continue
			}
			v, err := strconv.ParseBool(arg.Value)
			if err != nil {
				return Subscribe{}, fmt.Errorf("sticky %q is not a boolean", arg.Value)
			}
			out.Sticky = v
		default:
			return Subscribe{}, fmt.Errorf("unknown argument %q", arg.Key)
		}
	}
	return out, nil
}
