package mockapi

const (
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	yellow     = "\033[33m"
	magenta    = "\033[35m"
	red        = "\033[31m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PUT":    cyan,
	"DELETE": yellow,
	"PATCH":  magenta,
}

// statusColor highlights client and server errors in development logs.
func statusColor(status int) string {
	switch {
	case status >= 500:
		return red
	case status >= 400:
		return yellow
	default:
		return green
	}
}
