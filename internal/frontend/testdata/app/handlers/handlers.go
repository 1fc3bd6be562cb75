package handlers

import "example.com/app/events"

type Base struct{}

//eventbus:subscribe mode=async priority=2
func (Base) OnLogin(e *events.Login) {}

type Derived struct {
	Base
	name string
}

//eventbus:subscribe
func (d *Derived) OnLogin(e *events.Login) {}

//eventbus:subscribe sticky
func (d *Derived) OnText(s string) {}

//eventbus:subscribe
func (d *Derived) onPrivate(s string) {}

//eventbus:subscribe
func (d *Derived) OnTwo(a, b string) {}

//eventbus:subscribe mode=sideways
func (d *Derived) OnBad(s string) {}

type hidden struct{}

//eventbus:subscribe
func (hidden) OnText(s string) {}

//eventbus:subscribe
func Static(s string) {}

//eventbus:subscribe
type NotAMethod struct{}

//eventbus:unknown
func Helper() {}

//eventbus:subscribe

func Later() {}
