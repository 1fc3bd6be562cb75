package bus

type Login struct{ User string }

type Base struct{}

//eventbus:subscribe priority=1
func (Base) OnLogin(e *Login) {}

type Derived struct{ Base }

//eventbus:subscribe mode=main sticky
func (*Derived) OnText(s string) {}

type hidden struct{}

//eventbus:subscribe
func (hidden) OnText(s string) {}
