// Package log provides the leveled logging interface used throughout docschat.
//
// The Logger interface has four printf-style methods (Debug, Info, Warn,
// Error). Two implementations are provided: DefaultLogger on top of the
// standard library, and GologLogger on top of github.com/kataras/golog,
// which the application wires by default.
//
//	logger := log.NewGolog(log.LogLevelInfo)
//	logger.Info("routed to category: %s", category)
//
// A package-level logger is available for code that has no injected logger;
// configure it once at startup:
//
//	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
//	if err != nil {
//		// ...
//	}
//	log.SetDefaultLogger(log.NewGolog(level))
package log
