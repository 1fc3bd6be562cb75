package events

type Login struct{ User string }
