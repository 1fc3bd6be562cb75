package ok

type Handler struct{}

//eventbus:subscribe
func (*Handler) OnText(s string) {}
