package commands

const (
	_var = "/usr/local/var/sites-sync"

	DEFAULT_WORKDIR = _var
)
