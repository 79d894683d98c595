package sub

import "github.com/leonelquinteros/gotext"

func Sub() string {
	return gotext.Get("sub")
}
