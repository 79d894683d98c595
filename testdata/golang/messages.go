package golang

import (
	"fmt"

	"github.com/leonelquinteros/gotext"
)

const greeting = "Hello"

func Messages(n int, name string) {
	fmt.Println(gotext.Get("gettext"))
	fmt.Println(gotext.Get(greeting + " world"))
	fmt.Println(gotext.Get(name))
	fmt.Println(gotext.GetD("test-domain", "dgettext1"))
	fmt.Println(gotext.GetN("ngettext1", "ngettext1-plural", n))
	fmt.Println(gotext.GetND("test-domain", "dngettext1", "dngettext1-plural", n))
	fmt.Println(T("custom"))
	fmt.Println(gotext.Get(""))
}

// T is only found when it is added as a marker.
func T(s string) string {
	return s
}
