// File: protocol/hello.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"io"
	"net/http"
)

// HelloBody is the fixed body returned by Hello.
const HelloBody = "Hello World!"

// Hello answers every request with 200 OK and HelloBody.
func Hello() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, HelloBody)
	})
}
