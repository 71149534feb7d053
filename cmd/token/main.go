package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/twbeatles/hwpmaster-api/internal/app"
)

var exitFunc = os.Exit

// Mints a bearer token for the protected API routes.
func main() {
	subject := flag.String("subject", "operator", "subject claim of the issued token")
	flag.Parse()

	token, err := app.IssueToken(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
		return
	}
	fmt.Println(token)
}
