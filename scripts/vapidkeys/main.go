// Command vapidkeys prints a fresh VAPID key pair in .env form.
package main

import (
	"fmt"
	"log"

	"puckline/services/push"
)

func main() {
	public, private, err := push.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("Failed to generate VAPID keys: %v", err)
	}
	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", public)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", private)
}
