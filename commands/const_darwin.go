package commands

const (
	_var = "/usr/local/var/com.github.sitesync"

	DEFAULT_WORKDIR = _var
)
