package handlers

import (
	"log"
	"net/http"

	"github.com/tech-vexy/blog/he"
	"github.com/tech-vexy/blog/robots"
	"github.com/tech-vexy/blog/varz"
)

var (
	robotsServed = varz.NewInt("robotsServed")
	robotsFailed = varz.NewInt("robotsFailed")
)

// RobotsTXT serves the robots.txt document for the responder's site URL.
// A configuration fault fails the request; no partial document is written.
func RobotsTXT(rs *robots.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := rs.Respond()
		if err != nil {
			robotsFailed.Add(1)
			he.SendErrorToHTTPClient(w, "build robots.txt", err)
			return
		}
		if err := res.Send(w); err != nil {
			log.Printf("error writing robots.txt to client: %v", err)
			return
		}
		robotsServed.Add(1)
	}
}
