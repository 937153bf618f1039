package handlers

import "github.com/gin-gonic/gin"

const flashCookieName = "flash"

// setFlash stores a one-shot user-visible message, read and cleared by
// the next page load. Stands in for server-side template flashes; the
// front end surfaces it.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookieName, msg, 60, "/", "", false, false)
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(c *gin.Context) string {
	msg, err := c.Cookie(flashCookieName)
	if err != nil || msg == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, false)
	return msg
}
