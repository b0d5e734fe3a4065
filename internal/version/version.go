package version

const (
	AppName    = "Reverie"
	AppVersion = "0.1.0"
)
