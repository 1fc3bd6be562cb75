package h

type Handler struct{}

//eventbus:subscribe
func (*Handler) OnText(s string) {}
