package main

type App struct{}

//eventbus:subscribe
func (App) OnText(s string) {}

func main() {}
