package bus

import (
	"sync"

	aevents "example.com/gocheck/a/events"
	bevents "example.com/gocheck/b/events"
)

type Base struct{}

//eventbus:subscribe priority=2
func (*Base) OnA(e *aevents.Login) {}

type Derived struct {
	sync.Mutex
	Base
}

//eventbus:subscribe mode=async
func (d *Derived) OnB(e bevents.Login) {}
