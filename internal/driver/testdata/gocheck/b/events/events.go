package events

type Login struct{ Token string }
