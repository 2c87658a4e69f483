package campaign

import "errors"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigRead     = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config")
	ErrUnknownTarget  = errors.New("unknown target")
	ErrUnknownHasher  = errors.New("unknown hasher")
	ErrUnknownLevel   = errors.New("unknown log level")
)
