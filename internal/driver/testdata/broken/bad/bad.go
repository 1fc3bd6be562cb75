package bad

type Handler struct{}

//eventbus:subscribe
func (Handler) OnEvent(e Missing) {}
