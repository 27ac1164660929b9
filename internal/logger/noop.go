package logger

var _ Logger = nopLogger{}

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Tests and library defaults use it.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any)       {}
func (nopLogger) Info(string, ...any)        {}
func (nopLogger) Warn(string, ...any)        {}
func (nopLogger) Error(string, ...any)       {}
func (n nopLogger) Named(string) Logger      { return n }
func (n nopLogger) WithFields(...any) Logger { return n }
func (nopLogger) Sync() error                { return nil }
