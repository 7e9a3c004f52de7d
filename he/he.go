// Package he turns errors into HTTP error responses.
package he

import (
	"errors"
	"fmt"
	"log" // all kids love log
	"net/http"

	"github.com/tech-vexy/blog/siteurl"
)

// HTTPError is an error that knows which status code the client should see.
type HTTPError struct {
	code int
	err  error
}

func HTTPCodedErrorf(code int, f string, more ...any) *HTTPError {
	return &HTTPError{
		code: code,
		err:  fmt.Errorf(f, more...),
	}
}

func (e *HTTPError) Error() string {
	return e.err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.err
}

func (e *HTTPError) Code() int {
	return e.code
}

// StatusCode picks the response code for err.  Configuration faults are the
// server's problem, so they get a 500 like anything else we don't recognize.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.code
	}
	return http.StatusInternalServerError
}

// SendErrorToHTTPClient sends err as an HTTP error.  If it happens to be our
// special HTTPError, we can include a better response code; otherwise,
// client gets 500 and it's on us.
func SendErrorToHTTPClient(w http.ResponseWriter, while string, err error) {
	var ice *siteurl.InvalidConfigurationError
	if errors.As(err, &ice) {
		log.Printf("can't %s: configuration fault: %v", while, err)
		http.Error(w, fmt.Sprintf("can't %s: server misconfigured", while), http.StatusInternalServerError)
		return
	}

	txt := fmt.Sprintf("can't %s: %v", while, err)
	log.Println(txt)
	http.Error(w, txt, StatusCode(err))
}
