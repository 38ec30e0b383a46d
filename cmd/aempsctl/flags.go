package main

import "time"

// Flag structs decouple cobra from command logic for testing. Zero values
// mean "not set"; the dispatcher resolves flag > persisted config > default.

type UpFlags struct {
	UvicornHost string
	AccessHost  string
	Port        int
	Workers     int
	LogLevel    string
	Daemon      bool
	NoDaemon    bool // explicit negation, wins over --daemon
	Command     string
}

type DevFlags struct {
	UvicornHost string
	AccessHost  string
	Port        int
	Command     string
}

type DownFlags struct {
	Wait time.Duration
}

type RestartFlags struct {
	UvicornHost string
	AccessHost  string
	Port        int
	Workers     int
	LogLevel    string
	Daemon      bool
	NoDaemon    bool
	Command     string
	Wait        time.Duration
}

type HealthFlags struct {
	AccessHost string
	Port       int
}

type OpenAPIFlags struct {
	Output     string
	AccessHost string
	Port       int
}

type DocsFlags struct {
	AccessHost string
	Port       int
}

type LogsFlags struct {
	File      string
	FromStart bool
}

type HistoryFlags struct {
	Limit int
}
